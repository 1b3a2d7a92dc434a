package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IT-26211-Group-1/adultna-sub002/internal/interview"
	"github.com/xeipuuv/gojsonschema"
)

const snapshotVersion = 1

// snapshot: формат, в котором состояние лежит в хранилище
type snapshot struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"savedAt"`
	State   State     `json:"state"`
}

const snapshotSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "state"],
  "properties": {
    "version": {"type": "integer"},
    "savedAt": {"type": "string"},
    "state": {
      "type": "object",
      "required": ["step", "selectedField", "selectedJobRole", "sessionId", "questions"],
      "properties": {
        "step": {"enum": ["field", "jobRole", "guidelines", "questions"]},
        "selectedField": {"type": "string"},
        "selectedJobRole": {"type": "string"},
        "sessionId": {"type": "string"},
        "questions": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["id", "question", "isGeneral"],
            "properties": {
              "id": {"type": "string", "minLength": 1},
              "question": {"type": "string"},
              "category": {"type": "string"},
              "isGeneral": {"type": "boolean"},
              "order": {"type": "integer"}
            }
          }
        }
      }
    }
  }
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(snapshotSchema))
	if err != nil {
		panic(fmt.Sprintf("session: некорректная схема состояния: %v", err))
	}
	return schema
}

var errSnapshotShape = errors.New("состояние не соответствует схеме")

func encodeSnapshot(state State, now time.Time) (string, error) {
	data, err := json.Marshal(snapshot{
		Version: snapshotVersion,
		SavedAt: now.UTC(),
		State:   state,
	})
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации состояния: %w", err)
	}
	return string(data), nil
}

// decodeSnapshot проверяет схему, версию и согласованность шага.
// Любое несоответствие возвращается ошибкой, вызывающий трактует её как отсутствие состояния.
func decodeSnapshot(raw string) (State, error) {
	result, err := compiledSchema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return State{}, fmt.Errorf("ошибка разбора состояния: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return State{}, fmt.Errorf("%w: %s", errSnapshotShape, strings.Join(details, "; "))
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return State{}, fmt.Errorf("ошибка разбора состояния: %w", err)
	}

	if snap.Version != snapshotVersion {
		return State{}, fmt.Errorf("неподдерживаемая версия состояния %d", snap.Version)
	}

	if !snap.State.consistent() {
		return State{}, fmt.Errorf("состояние не согласовано с шагом %q", snap.State.Step)
	}

	if snap.State.Questions == nil {
		snap.State.Questions = []interview.Question{}
	}

	return snap.State, nil
}
