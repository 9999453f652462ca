package validators

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/MKhiriev/go-offline-sync/models"
)

// Field names accepted by [RecordValidator.Validate] to add checks on top of
// the schema.
const (
	// FieldID requires a server-issued record id (updates and deletes).
	FieldID = "id"
	// FieldLastEdit requires a positive lastEditTimestamp.
	FieldLastEdit = "last_edit"
	// FieldLogin requires a non-empty user login.
	FieldLogin = "login"
	// FieldPassword requires a non-empty user password.
	FieldPassword = "password"
)

//go:embed record_schema.json
var recordSchema string

// RecordValidator checks record payloads against the embedded JSON schema and
// user credentials for presence.
type RecordValidator struct {
	schema *jsonschema.Schema
}

// NewRecordValidator compiles the record schema. The schema is embedded, so a
// compile failure is a programming error and panics.
func NewRecordValidator() Validator {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(recordSchema))
	if err != nil {
		panic(fmt.Sprintf("record schema: %v", err))
	}

	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource("record.json", doc); err != nil {
		panic(fmt.Sprintf("record schema: %v", err))
	}

	schema, err := c.Compile("record.json")
	if err != nil {
		panic(fmt.Sprintf("record schema: %v", err))
	}

	return &RecordValidator{schema: schema}
}

// Validate accepts raw JSON bodies ([]byte, json.RawMessage), records and
// users. Records and raw bodies go through the schema; fields add the named
// checks.
func (v *RecordValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case []byte:
		return v.validateBody(value)
	case json.RawMessage:
		return v.validateBody(value)

	case models.Record:
		return v.validateRecord(ctx, value, fields...)
	case *models.Record:
		return v.validateRecord(ctx, *value, fields...)

	case models.User:
		return validateCredentials(value, fields...)
	case *models.User:
		return validateCredentials(*value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *RecordValidator) validateBody(body []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	if err := v.schema.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	return nil
}

func (v *RecordValidator) validateRecord(_ context.Context, record models.Record, fields ...string) error {
	body, err := json.Marshal(record.Submission())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := v.validateBody(body); err != nil {
		return err
	}

	for _, field := range fields {
		switch field {
		case FieldID:
			if record.ID == "" {
				return ErrEmptyRecordID
			}
			if models.IsTemporaryID(record.ID) {
				return ErrTemporaryID
			}
		case FieldLastEdit:
			if record.LastEdit <= 0 {
				return ErrInvalidLastEdit
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
	}

	return nil
}

func validateCredentials(user models.User, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldLogin, FieldPassword}
	}

	for _, field := range fields {
		switch field {
		case FieldLogin:
			if strings.TrimSpace(user.Login) == "" {
				return ErrEmptyLogin
			}
		case FieldPassword:
			if user.Password == "" {
				return ErrEmptyPassword
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
	}

	return nil
}
