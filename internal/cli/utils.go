package cli

import (
	"context"
	"errors"
	"flag"

	"orders_console/internal/api"
	"orders_console/internal/orders"
	"orders_console/internal/validation"
)

// FriendlyError maps an error returned by Execute to the message printed for
// the user.
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return "Non connecté : lancez « orders-console login -u UTILISATEUR »."
	case errors.Is(err, api.ErrUnauthorized):
		if msg := api.ServerMessage(err); msg != "" {
			return "Accès refusé : " + msg
		}
		return "Session expirée : reconnectez-vous."
	case errors.Is(err, ErrMissingUsername):
		return "Nom d'utilisateur requis (-u)."
	case errors.Is(err, ErrMissingPassword):
		return "Mot de passe requis."
	case errors.Is(err, api.ErrTransport):
		return "Une erreur est survenue lors de la connexion au serveur."
	case errors.Is(err, api.ErrMissingID):
		return "Identifiant requis."
	case errors.Is(err, api.ErrInvalidInput), errors.Is(err, validation.ErrInvalid), errors.Is(err, orders.ErrInvalidFilter):
		return err.Error()
	case errors.Is(err, api.ErrUnrecognizedEnvelope), errors.Is(err, api.ErrMalformedBody):
		return "Réponse inattendue du serveur."
	case errors.Is(err, ErrUnknownCommand), errors.Is(err, flag.ErrHelp):
		return err.Error()
	case errors.Is(err, context.Canceled):
		return "Interrompu."
	}

	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	var failure *api.FailureError
	if errors.As(err, &failure) {
		return "Login failed"
	}
	return err.Error()
}
