package manifest

import (
	"bytes"
	"encoding/json"

	"github.com/arthur-debert/dorecipe/pkg/errors"
)

// EncodedAction is the persisted form of one action
type EncodedAction struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeActions converts actions into their persisted form. File contents
// are not kept: undoing a write only needs the targets.
func EncodeActions(actions []Action) ([]EncodedAction, error) {
	enc := &encoder{}
	for _, a := range actions {
		if err := a.Accept(enc); err != nil {
			return nil, err
		}
	}
	return enc.out, nil
}

// DecodeEncodedActions restores actions from their persisted form
func DecodeEncodedActions(encoded []EncodedAction) ([]Action, error) {
	actions := make([]Action, 0, len(encoded))
	for _, e := range encoded {
		action, err := emptyAction(e.Kind)
		if err != nil {
			return nil, err
		}
		if len(e.Payload) > 0 {
			if err := json.Unmarshal(e.Payload, action); err != nil {
				return nil, errors.Wrapf(err, errors.ErrValidation, "invalid %s payload", e.Kind)
			}
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func emptyAction(kind Kind) (Action, error) {
	switch kind {
	case KindWriteFiles:
		return &WriteFiles{}, nil
	case KindCopyFromPackage:
		return &CopyFromPackage{}, nil
	case KindRegisterModules:
		return &RegisterModules{}, nil
	case KindSetEnvVars:
		return &SetEnvVars{}, nil
	case KindGitignoreEntries:
		return &GitignoreEntries{}, nil
	case KindPostInstallMessage:
		return &PostInstallMessage{}, nil
	default:
		return nil, errors.Newf(errors.ErrValidation, "unknown action kind %q", kind).
			WithDetail("kind", string(kind))
	}
}

type encoder struct {
	out []EncodedAction
}

func (e *encoder) add(kind Kind, payload interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to encode %s action", kind)
	}
	e.out = append(e.out, EncodedAction{Kind: kind, Payload: bytes.TrimSpace(buf.Bytes())})
	return nil
}

func (e *encoder) VisitWriteFiles(a *WriteFiles) error {
	stripped := &WriteFiles{Files: make([]FileSpec, 0, len(a.Files))}
	for _, f := range a.Files {
		stripped.Files = append(stripped.Files, FileSpec{Target: f.Target, Executable: f.Executable})
	}
	return e.add(a.Kind(), stripped)
}

func (e *encoder) VisitCopyFromPackage(a *CopyFromPackage) error       { return e.add(a.Kind(), a) }
func (e *encoder) VisitRegisterModules(a *RegisterModules) error       { return e.add(a.Kind(), a) }
func (e *encoder) VisitSetEnvVars(a *SetEnvVars) error                 { return e.add(a.Kind(), a) }
func (e *encoder) VisitGitignoreEntries(a *GitignoreEntries) error     { return e.add(a.Kind(), a) }
func (e *encoder) VisitPostInstallMessage(a *PostInstallMessage) error { return e.add(a.Kind(), a) }
