// Copyright (c) 2026 RootLink. All rights reserved.

package request

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/RuzhenWong/rootlink/internal/platform/apperr"
	"github.com/RuzhenWong/rootlink/internal/platform/constants"
	"github.com/RuzhenWong/rootlink/internal/platform/metrics"
)

// Envelope is the wrapper every RootLink API response uses.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// decodeEnvelope parses body, requiring at least the code field.
func decodeEnvelope(body []byte) (*Envelope, error) {
	var probe struct {
		Code    *int            `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, err
	}
	if probe.Code == nil {
		return nil, fmt.Errorf("request: envelope without code")
	}
	return &Envelope{Code: *probe.Code, Message: probe.Message, Data: probe.Data}, nil
}

// verdict is the classified result of one exchange.
type verdict struct {
	// err is nil on success.
	err *apperr.AppError
	// notice is the user-visible message, empty on success.
	notice string
	// expire requests the session-expiry recovery.
	expire bool
}

// classifyEnvelope handles a 2xx response whose body is an envelope.
func classifyEnvelope(envelope *Envelope) verdict {
	switch envelope.Code {
	case constants.BusinessCodeOK:
		return verdict{}
	case constants.BusinessCodeUnauthorized:
		return verdict{
			err:    apperr.AuthExpired(envelope.Message, http.StatusOK, envelope.Code),
			notice: constants.NoticeSessionExpired,
			expire: true,
		}
	default:
		notice := envelope.Message
		if notice == "" {
			notice = constants.NoticeRequestFailed
		}
		return verdict{
			err:    apperr.Server(envelope.Message, http.StatusOK, envelope.Code),
			notice: notice,
		}
	}
}

// classifyStatus handles a non-2xx transport status.
//
// envelope may be nil when the error body is not an envelope; its message is
// preferred over the generic notice text for the returned error.
func classifyStatus(status int, envelope *Envelope) verdict {
	message, code := "", 0
	if envelope != nil {
		message, code = envelope.Message, envelope.Code
	}
	pick := func(fallback string) string {
		if message != "" {
			return message
		}
		return fallback
	}

	switch {
	case status == http.StatusUnauthorized:
		return verdict{
			err:    apperr.AuthExpired(pick(constants.NoticeSessionExpired), status, code),
			notice: constants.NoticeSessionExpired,
			expire: true,
		}
	case status == http.StatusForbidden:
		err := apperr.Forbidden(pick(constants.NoticeForbidden))
		err.BusinessCode = code
		return verdict{err: err, notice: constants.NoticeForbidden}
	case status == http.StatusNotFound:
		err := apperr.NotFound(pick(constants.NoticeNotFound))
		err.BusinessCode = code
		return verdict{err: err, notice: constants.NoticeNotFound}
	case status >= http.StatusInternalServerError:
		return verdict{
			err:    apperr.Server(pick(constants.NoticeServerError), status, code),
			notice: constants.NoticeServerError,
		}
	default:
		return verdict{
			err:    apperr.Server(pick(constants.NoticeRequestFailed), status, code),
			notice: pick(constants.NoticeRequestFailed),
		}
	}
}

// outcomeLabel maps a verdict onto its metrics label.
func outcomeLabel(err *apperr.AppError) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	switch err.Kind {
	case apperr.KindAuthExpired:
		return metrics.OutcomeAuthExpired
	case apperr.KindForbidden:
		return metrics.OutcomeForbidden
	case apperr.KindNotFound:
		return metrics.OutcomeNotFound
	case apperr.KindNetwork:
		return metrics.OutcomeNetwork
	default:
		return metrics.OutcomeServer
	}
}
