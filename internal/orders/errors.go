package orders

import (
	"context"
	"errors"

	"orders_console/internal/api"
)

var ErrInvalidFilter = errors.New("invalid order filter")

// FriendlyError is the inline notice shown when a fetch degrades.
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}
	if msg := api.ServerMessage(err); msg != "" && !errors.Is(err, api.ErrUnauthorized) {
		return msg
	}
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return "Session expirée, veuillez vous reconnecter."
	case errors.Is(err, api.ErrTransport):
		return "Serveur injoignable."
	case errors.Is(err, api.ErrUnrecognizedEnvelope), errors.Is(err, api.ErrMalformedBody):
		return "Réponse inattendue du serveur."
	case errors.Is(err, ErrInvalidFilter):
		return err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Requête interrompue."
	default:
		return "Impossible de charger les commandes."
	}
}
