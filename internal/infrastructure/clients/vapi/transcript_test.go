package vapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wahealth/sca-simulator/internal/domain/entities"
)

func decodeRecord(t *testing.T, payload string) *callRecord {
	t.Helper()
	var record callRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &record))
	return &record
}

func TestExtractTranscriptStructuredList(t *testing.T) {
	record := decodeRecord(t, `{
		"transcript": [
			{"speaker": "user", "text": "Hello doctor"},
			{"speaker": "assistant", "text": "Hello, what brings you in?"},
			{"speaker": "assistant", "text": "   "}
		]
	}`)

	turns := ExtractTranscript(record)
	require.Len(t, turns, 2)
	assert.Equal(t, entities.SpeakerHuman, turns[0].Speaker)
	assert.Equal(t, "Hello doctor", turns[0].Text)
	assert.Equal(t, entities.SpeakerAssistant, turns[1].Speaker)
}

func TestExtractTranscriptArtifactString(t *testing.T) {
	record := decodeRecord(t, `{
		"artifact": {
			"transcript": "Doctor: What brings you in today?\nPatient: I've had this cough for weeks.\n\nnot a turn\nDoctor: Tell me more."
		}
	}`)

	turns := ExtractTranscript(record)
	require.Len(t, turns, 3)
	assert.Equal(t, entities.SpeakerHuman, turns[0].Speaker)
	assert.Equal(t, "What brings you in today?", turns[0].Text)
	assert.Equal(t, entities.SpeakerAssistant, turns[1].Speaker)
	assert.Equal(t, "I've had this cough for weeks.", turns[1].Text)
	assert.Equal(t, entities.SpeakerHuman, turns[2].Speaker)
}

func TestExtractTranscriptStructuredListWinsOverArtifact(t *testing.T) {
	record := decodeRecord(t, `{
		"transcript": [{"speaker": "doctor", "text": "From the list"}],
		"artifact": {"transcript": "Doctor: From the artifact"}
	}`)

	turns := ExtractTranscript(record)
	require.Len(t, turns, 1)
	assert.Equal(t, "From the list", turns[0].Text)
}

func TestExtractTranscriptMessagesSkipSystem(t *testing.T) {
	record := decodeRecord(t, `{
		"messages": [
			{"role": "system", "message": "You are a patient"},
			{"role": "user", "message": "Hello"},
			{"role": "bot", "message": "Hi there"}
		]
	}`)

	turns := ExtractTranscript(record)
	require.Len(t, turns, 2)
	assert.Equal(t, entities.SpeakerHuman, turns[0].Speaker)
	assert.Equal(t, entities.SpeakerAssistant, turns[1].Speaker)
}

func TestExtractTranscriptOpenAIFormattedFallback(t *testing.T) {
	record := decodeRecord(t, `{
		"artifact": {
			"messagesOpenAIFormatted": [
				{"role": "system", "content": "You are a patient"},
				{"role": "assistant", "content": "Hello"},
				{"role": "user", "content": "Hi, I'm Dr Jones"}
			]
		}
	}`)

	turns := ExtractTranscript(record)
	require.Len(t, turns, 2)
	assert.Equal(t, entities.SpeakerAssistant, turns[0].Speaker)
	assert.Equal(t, entities.SpeakerHuman, turns[1].Speaker)
}

func TestExtractTranscriptEmptyRecord(t *testing.T) {
	assert.Nil(t, ExtractTranscript(&callRecord{}))
}

func TestNormalizeSpeaker(t *testing.T) {
	assert.Equal(t, entities.SpeakerHuman, normalizeSpeaker("Doctor"))
	assert.Equal(t, entities.SpeakerHuman, normalizeSpeaker(" user "))
	assert.Equal(t, entities.SpeakerAssistant, normalizeSpeaker("Patient"))
	assert.Equal(t, entities.SpeakerAssistant, normalizeSpeaker("assistant"))
}

func TestCallDuration(t *testing.T) {
	assert.InDelta(t, 90.0, callDuration("2026-01-01T10:00:00Z", "2026-01-01T10:01:30Z"), 0.001)
	assert.Zero(t, callDuration("bad", "2026-01-01T10:01:30Z"))
}
