package triage

import "regexp"

// emergencyPhrase maps a compiled pattern to the canonical keyword
// reported to the client. Scan order of this table defines the order of
// MatchedKeywords.
type emergencyPhrase struct {
	keyword string
	pattern string
	re      *regexp.Regexp
}

var emergencyPhrases = []emergencyPhrase{
	{keyword: "chest pain", pattern: `(?i)\bchest\s+(pain|pressure|tightness)\b|सीने में (दर्द|जकड़न)|छाती में दर्द`},
	{keyword: "difficulty breathing", pattern: `(?i)\b(can'?t|cannot|can not|unable to|difficulty|trouble|hard to)\s+breath(e|ing)?\b|\bshort(ness)? of breath\b|साँस नहीं|सांस नहीं|साँस लेने में|सांस लेने में`},
	{keyword: "unconscious", pattern: `(?i)\bunconscious\b|\bnot (waking|responding)\b|\bpassed out\b|\bfainted\b|बेहोश|होश में नहीं`},
	{keyword: "severe bleeding", pattern: `(?i)\b(severe|heavy|uncontrolled)\s+bleeding\b|\bbleeding (a lot|heavily|won'?t stop)\b|खून (बह रहा|नहीं रुक)|बहुत खून`},
	{keyword: "stroke", pattern: `(?i)\bstroke\b|\bface droop(ing)?\b|\bslurred speech\b|\b(arm|leg|side) (weak|numb)\w*\b|लकवा|चेहरा टेढ़ा`},
	{keyword: "heart attack", pattern: `(?i)\bheart attack\b|दिल का दौरा|हार्ट अटैक`},
	{keyword: "seizure", pattern: `(?i)\bseizure\b|\bconvuls\w+\b|\bfitting\b|दौरा पड़|मिर्गी`},
	{keyword: "choking", pattern: `(?i)\bchoking\b|\bairway blocked\b|गला घुट|दम घुट`},
	{keyword: "suicidal", pattern: `(?i)\b(kill|hurt|harm)\w* (myself|himself|herself)\b|\bsuicid\w+\b|\bend my life\b|आत्महत्या|खुद को (मार|खत्म)`},
	{keyword: "poisoning", pattern: `(?i)\bpoison\w*\b|\b(swallowed|drank|ate).{0,30}\b(bleach|acid|kerosene|pills|tablets)\b|ज़हर|जहर`},
	{keyword: "severe burn", pattern: `(?i)\b(severe|bad|large) burns?\b|\bburn\w* (all over|badly)\b|बुरी तरह जल|गंभीर जल`},
	{keyword: "snake bite", pattern: `(?i)\bsnake\s*bite?\b|\bbitten by a snake\b|साँप ने (काटा|डसा)|सांप ने काटा`},
	{keyword: "severe allergic reaction", pattern: `(?i)\banaphyla\w+\b|\b(throat|tongue|face) (swelling|swollen)\b|\ballergic reaction\b.{0,30}\b(breath|swell)\w*`},
}

func init() {
	for i := range emergencyPhrases {
		emergencyPhrases[i].re = regexp.MustCompile(emergencyPhrases[i].pattern)
	}
}

// DetectEmergency scans the message against the curated phrase table.
// The language hint is accepted but ignored on purpose: voice
// transcripts code-switch mid-sentence, so every pattern row carries
// all its translations and the full table is scanned for every
// message. Scoping by hint would miss a Hindi phrase inside a request
// tagged "en". Pure and synchronous so it always runs before any
// network call; the verdict is advisory and never aborts the rest of
// the pipeline.
func DetectEmergency(message, _ string) EmergencyDetection {
	detection := EmergencyDetection{
		MatchedKeywords: []string{},
	}

	for _, phrase := range emergencyPhrases {
		if phrase.re.MatchString(message) {
			detection.IsEmergency = true
			detection.MatchedKeywords = append(detection.MatchedKeywords, phrase.keyword)
		}
	}

	return detection
}
