package vapi

import (
	"strings"

	"github.com/wahealth/sca-simulator/internal/domain/entities"
)

// callRecord is the subset of a Vapi call payload the simulator cares about.
// Transcript data can appear in several places depending on call age and
// pipeline version, so every known location is modelled.
type callRecord struct {
	Status     string           `json:"status"`
	StartedAt  string           `json:"startedAt"`
	EndedAt    string           `json:"endedAt"`
	Transcript []transcriptItem `json:"transcript"`
	Messages   []messageItem    `json:"messages"`
	Artifact   struct {
		Transcript              string        `json:"transcript"`
		MessagesOpenAIFormatted []messageItem `json:"messagesOpenAIFormatted"`
	} `json:"artifact"`
}

type transcriptItem struct {
	Speaker string `json:"speaker"`
	Role    string `json:"role"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

type messageItem struct {
	Role    string `json:"role"`
	Message string `json:"message"`
	Content string `json:"content"`
}

// ExtractTranscript walks the known transcript locations in priority order
// and returns turns from the first that yields any. The order matters: the
// structured list is the richest source, the artifact string and message
// arrays are fallbacks for older call records.
func ExtractTranscript(record *callRecord) []entities.TranscriptTurn {
	if turns := fromStructuredList(record.Transcript); len(turns) > 0 {
		return turns
	}
	if turns := fromArtifactString(record.Artifact.Transcript); len(turns) > 0 {
		return turns
	}
	if turns := fromMessages(record.Messages); len(turns) > 0 {
		return turns
	}
	if turns := fromOpenAIMessages(record.Artifact.MessagesOpenAIFormatted); len(turns) > 0 {
		return turns
	}
	return nil
}

func fromStructuredList(items []transcriptItem) []entities.TranscriptTurn {
	turns := make([]entities.TranscriptTurn, 0, len(items))
	for _, item := range items {
		text := item.Text
		if text == "" {
			text = item.Message
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		speaker := item.Speaker
		if speaker == "" {
			speaker = item.Role
		}
		turns = append(turns, entities.TranscriptTurn{
			Speaker: normalizeSpeaker(speaker),
			Text:    strings.TrimSpace(text),
		})
	}
	return turns
}

// fromArtifactString parses the flat "Speaker: text" transcript format, one
// turn per line. Lines without a speaker prefix are skipped.
func fromArtifactString(transcript string) []entities.TranscriptTurn {
	if strings.TrimSpace(transcript) == "" {
		return nil
	}

	var turns []entities.TranscriptTurn
	for _, line := range strings.Split(transcript, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		speaker, text, found := strings.Cut(line, ":")
		if !found || strings.TrimSpace(text) == "" {
			continue
		}

		turns = append(turns, entities.TranscriptTurn{
			Speaker: normalizeSpeaker(speaker),
			Text:    strings.TrimSpace(text),
		})
	}
	return turns
}

func fromMessages(messages []messageItem) []entities.TranscriptTurn {
	var turns []entities.TranscriptTurn
	for _, msg := range messages {
		if msg.Role == "system" {
			continue
		}
		text := msg.Message
		if text == "" {
			text = msg.Content
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		turns = append(turns, entities.TranscriptTurn{
			Speaker: normalizeSpeaker(msg.Role),
			Text:    strings.TrimSpace(text),
		})
	}
	return turns
}

func fromOpenAIMessages(messages []messageItem) []entities.TranscriptTurn {
	var turns []entities.TranscriptTurn
	for _, msg := range messages {
		if msg.Role == "system" {
			continue
		}
		text := msg.Content
		if text == "" {
			text = msg.Message
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		turns = append(turns, entities.TranscriptTurn{
			Speaker: normalizeSpeaker(msg.Role),
			Text:    strings.TrimSpace(text),
		})
	}
	return turns
}

// normalizeSpeaker maps provider speaker labels onto the two canonical roles.
// Anything that looks like the trainee (doctor, user, human) becomes human;
// everything else is the simulated patient.
func normalizeSpeaker(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "doctor", "user", "human", "customer":
		return entities.SpeakerHuman
	default:
		return entities.SpeakerAssistant
	}
}
