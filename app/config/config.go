package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log    Log    `yaml:"log"`
	Server Server `yaml:"server"`
	Brain  Brain  `yaml:"brain"`
	STT    STT    `yaml:"stt"`
	TTS    TTS    `yaml:"tts"`
	Tools  Tools  `yaml:"tools"`
	Data   Data   `yaml:"data"`
	Limits Limits `yaml:"limits"`
}

type Server struct {
	// Listen address of the HTTP API
	Addr string `yaml:"addr" example:":8080"`
}

type Brain struct {
	// OpenAI-compatible base url of the reasoning engine
	BaseURL string `yaml:"base_url" example:"https://api.openai.com/v1" validate:"required"`
	// API token
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX" validate:"required"`
	// Model used for triage reasoning
	Model string `yaml:"model" example:"gpt-4o" validate:"required"`
}

type STT struct {
	// Transcription model
	Model string `yaml:"model" example:"whisper-1"`
	// Maximum accepted upload size in bytes
	MaxUploadBytes int `yaml:"max_upload_bytes" example:"5242880"`
}

type TTS struct {
	Rest TTSRest `yaml:"rest"`
	WS   TTSWS   `yaml:"ws"`
}

type TTSRest struct {
	// Base url of the HTTP synthesizer
	BaseURL string `yaml:"base_url" example:"https://api.voicegateway.io" validate:"required"`
	// API token
	Token string `yaml:"token" validate:"required"`
	// Voice id used for synthesis
	Voice string `yaml:"voice" example:"kalpana"`
	// Maximum characters per synthesis request
	MaxChunkLen int `yaml:"max_chunk_len" example:"500"`
}

type TTSWS struct {
	// Websocket url of the streaming synthesizer
	URL string `yaml:"url" example:"wss://api.voicegateway.io/v1/stream" validate:"required"`
	// API token
	Token string `yaml:"token" validate:"required"`
	// Voice id used for synthesis
	Voice string `yaml:"voice" example:"kalpana"`
	// Output sample rate
	SampleRate int `yaml:"sample_rate" example:"22050"`
	// Maximum characters per session, longer input is truncated
	MaxTextLen int `yaml:"max_text_len" example:"4000"`
}

type Tools struct {
	// External MCP tool servers exposed to the reasoning engine
	MCP []MCPServer `yaml:"mcp"`
}

type MCPServer struct {
	Name    string   `yaml:"name" validate:"required"`
	Command string   `yaml:"command" validate:"required"`
	Args    []string `yaml:"args"`
}

type Data struct {
	// Directory for session history files
	Dir string `yaml:"dir" example:"data"`
}

type Limits struct {
	// Triage stream requests per minute per client
	TriagePerMinute int `yaml:"triage_per_minute" example:"20"`
	// Transcription requests per minute per client
	TranscribePerMinute int `yaml:"transcribe_per_minute" example:"30"`
}

type Log struct {
	// Minimum console log level
	Level string `yaml:"level" example:"info" validate:"omitempty,oneof=debug info warn error"`
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.Log.Level == "" {
		result.Log.Level = "info"
	}
	if result.Server.Addr == "" {
		result.Server.Addr = ":8080"
	}
	if result.STT.Model == "" {
		result.STT.Model = "whisper-1"
	}
	if result.STT.MaxUploadBytes == 0 {
		result.STT.MaxUploadBytes = 5 * 1024 * 1024
	}
	if result.TTS.Rest.MaxChunkLen == 0 {
		result.TTS.Rest.MaxChunkLen = 500
	}
	if result.TTS.WS.SampleRate == 0 {
		result.TTS.WS.SampleRate = 22050
	}
	if result.TTS.WS.MaxTextLen == 0 {
		result.TTS.WS.MaxTextLen = 4000
	}
	if result.Data.Dir == "" {
		result.Data.Dir = "data"
	}
	if result.Limits.TriagePerMinute == 0 {
		result.Limits.TriagePerMinute = 20
	}
	if result.Limits.TranscribePerMinute == 0 {
		result.Limits.TranscribePerMinute = 30
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
