package movements

import (
	"encoding/json"

	"github.com/google/uuid"

	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

// movementPayload is the stored body of a queued movement operation. The
// movement row itself carries the full request; the payload only has to point
// back at it.
type movementPayload struct {
	MovementID uuid.UUID `json:"movement_id"`
}

func encodePayload(movementID uuid.UUID) (json.RawMessage, error) {
	raw, err := json.Marshal(movementPayload{MovementID: movementID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to encode operation payload")
	}
	return raw, nil
}

func decodePayload(raw json.RawMessage) (movementPayload, error) {
	var payload movementPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to decode operation payload")
	}
	if payload.MovementID == uuid.Nil {
		return payload, pkgerrors.New(pkgerrors.CodeInternal, "operation payload missing movement id")
	}
	return payload, nil
}
