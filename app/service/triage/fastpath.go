package triage

import (
	"regexp"

	"github.com/elliotchance/pie/v2"
)

// Fast paths short-circuit the reasoning engine for common first-turn
// queries. They are pure latency/cost optimizations: a miss always falls
// through to full reasoning.

var facilityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(nearest|nearby|closest|find|locate|any|where('?s| is)?( the| a)?)\b.{0,40}\b(hospital|clinic|doctor|pharmacy|chemist|health\s+cent(er|re)|emergency room)\b`),
	regexp.MustCompile(`(?i)\b(hospital|clinic|pharmacy|doctor)s?\s+(near|around|close to)\s+(me|here|us)\b`),
	regexp.MustCompile(`(पास|नज़दीक|नजदीक|कहाँ|कहां).{0,25}(अस्पताल|क्लिनिक|दवाखाना|डॉक्टर)|(अस्पताल|क्लिनिक|दवाखाना|डॉक्टर).{0,25}(पास|नज़दीक|नजदीक|कहाँ|कहां)`),
}

// MatchFacilityQuery reports whether a first-turn message is a pure
// "find nearby care" request with no symptom content worth reasoning over.
func MatchFacilityQuery(message string, hasHistory bool) bool {
	if hasHistory {
		return false
	}

	return pie.Any(facilityPatterns, func(re *regexp.Regexp) bool {
		return re.MatchString(message)
	})
}

type FollowUp struct {
	Question string
	Options  []string
}

type symptomPattern struct {
	re       *regexp.Regexp
	question map[string]string
	options  map[string][]string
}

var symptomPatterns = []symptomPattern{
	{
		re: regexp.MustCompile(`(?i)\bfever\b|\btemperature\b|बुखार|बुख़ार`),
		question: map[string]string{
			"en": "How long have you had the fever, and have you measured your temperature?",
			"hi": "बुखार कितने दिनों से है, और क्या आपने तापमान मापा है?",
		},
		options: map[string][]string{
			"en": {"Less than 2 days", "2-4 days", "More than 4 days", "Haven't measured"},
			"hi": {"2 दिन से कम", "2-4 दिन", "4 दिन से ज़्यादा", "मापा नहीं"},
		},
	},
	{
		re: regexp.MustCompile(`(?i)\bheadache\b|\bhead (hurts|is hurting|pain)\b|सिर ?दर्द|सर ?दर्द`),
		question: map[string]string{
			"en": "Is this headache sudden and the worst you've ever had, or a familiar kind of pain?",
			"hi": "क्या यह सिरदर्द अचानक और अब तक का सबसे तेज़ है, या जाना-पहचाना दर्द है?",
		},
		options: map[string][]string{
			"en": {"Sudden and severe", "Familiar, mild", "Comes with fever", "After an injury"},
			"hi": {"अचानक और तेज़", "जाना-पहचाना, हल्का", "बुखार के साथ", "चोट के बाद"},
		},
	},
	{
		re: regexp.MustCompile(`(?i)\bstomach (ache|pain|hurts)\b|\bbelly (ache|pain)\b|\babdominal pain\b|पेट (में )?दर्द`),
		question: map[string]string{
			"en": "Where exactly is the stomach pain, and how long has it lasted?",
			"hi": "पेट में दर्द ठीक कहाँ है, और कितनी देर से हो रहा है?",
		},
		options: map[string][]string{
			"en": {"Around the navel", "Lower right side", "Upper abdomen", "All over"},
			"hi": {"नाभि के आसपास", "दाहिनी निचली तरफ", "ऊपरी पेट में", "पूरे पेट में"},
		},
	},
	{
		re: regexp.MustCompile(`(?i)\b(cough|coughing)\b|\bcold\b|\brunny nose\b|खाँसी|खांसी|ज़ुकाम|जुकाम`),
		question: map[string]string{
			"en": "How long have you had the cough, and is there any blood or thick phlegm?",
			"hi": "खांसी कितने दिनों से है, और क्या खून या गाढ़ा बलगम आ रहा है?",
		},
		options: map[string][]string{
			"en": {"Less than a week", "1-3 weeks", "More than 3 weeks", "Blood in phlegm"},
			"hi": {"एक हफ्ते से कम", "1-3 हफ्ते", "3 हफ्ते से ज़्यादा", "बलगम में खून"},
		},
	},
	{
		re: regexp.MustCompile(`(?i)\b(vomit|vomiting|throwing up)\b|\bdiarrh?oea\b|\bloose motions?\b|उल्टी|दस्त`),
		question: map[string]string{
			"en": "How many times in the last 24 hours, and are you able to keep fluids down?",
			"hi": "पिछले 24 घंटों में कितनी बार हुआ, और क्या आप पानी पी पा रहे हैं?",
		},
		options: map[string][]string{
			"en": {"1-3 times", "More than 3 times", "Can't keep fluids down", "Blood present"},
			"hi": {"1-3 बार", "3 बार से ज़्यादा", "पानी नहीं रुक रहा", "खून आ रहा है"},
		},
	},
}

// MatchSymptomPattern returns a canned follow-up for well-known
// first-turn symptom phrasings, or nil when full reasoning is needed.
func MatchSymptomPattern(message, language string, hasHistory bool) *FollowUp {
	if hasHistory {
		return nil
	}

	idx := pie.FindFirstUsing(symptomPatterns, func(p symptomPattern) bool {
		return p.re.MatchString(message)
	})
	if idx < 0 {
		return nil
	}

	p := symptomPatterns[idx]

	question, ok := p.question[language]
	if !ok {
		question = p.question["en"]
	}

	options, ok := p.options[language]
	if !ok {
		options = p.options["en"]
	}

	return &FollowUp{
		Question: question,
		Options:  options,
	}
}

var facilityIntro = map[string]string{
	"en": "Here are some healthcare facilities near you:",
	"hi": "आपके पास की कुछ स्वास्थ्य सुविधाएँ ये रही हैं:",
}

// FacilityIntro returns the localized one-liner sent with fast-path
// facility results.
func FacilityIntro(language string) string {
	if text, ok := facilityIntro[language]; ok {
		return text
	}

	return facilityIntro["en"]
}
