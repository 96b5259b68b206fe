package lib

import (
	"errors"
	"log"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	es_translations "github.com/go-playground/validator/v10/translations/es"
)

const DefaultLocale = "es"

var messages = map[string]map[string]string{
	"en": {
		"operation_failed":    "The operation failed. Please try again.",
		"unauthorized":        "Your session has expired. Please sign in again.",
		"forbidden":           "You are not allowed to perform this action.",
		"not_found":           "The requested record does not exist.",
		"conflict":            "The record conflicts with an existing one.",
		"validation":          "Some fields are invalid.",
		"invalid_transition":  "The ticket cannot move to that status.",
		"solution_required":   "Describe the solution before completing the ticket.",
		"assignee_required":   "Assign a technician before changing the status.",
		"invalid_assignee":    "The selected user cannot be assigned to this ticket.",
		"schedule_required":   "Choose a future date for the scheduled visit.",
		"field_not_editable":  "You cannot edit the field {0}.",
		"confirm_complete":    "Confirm that the work is finished.",
		"confirm_no_solution": "The ticket has no solution. Complete it anyway?",
		"unsupported_media":   "Only images and videos can be attached.",
		"media_too_large":     "The file is too large.",
		"maintenance":         "The service is under maintenance.",
		"assignment_subject":  "New ticket assigned: {0}",
		"assignment_title":    "Ticket assigned",
		"assignment_body":     "{0} ({1}) at {2}, {3}. Priority: {4}.",
		"escalation_title":    "Ticket escalated",
	},
	"es": {
		"operation_failed":    "La operación ha fallado. Inténtalo de nuevo.",
		"unauthorized":        "Tu sesión ha caducado. Vuelve a iniciar sesión.",
		"forbidden":           "No tienes permiso para realizar esta acción.",
		"not_found":           "El registro solicitado no existe.",
		"conflict":            "El registro entra en conflicto con uno existente.",
		"validation":          "Algunos campos no son válidos.",
		"invalid_transition":  "El ticket no puede pasar a ese estado.",
		"solution_required":   "Describe la solución antes de completar el ticket.",
		"assignee_required":   "Asigna un técnico antes de cambiar el estado.",
		"invalid_assignee":    "El usuario seleccionado no puede asignarse a este ticket.",
		"schedule_required":   "Elige una fecha futura para la visita programada.",
		"field_not_editable":  "No puedes editar el campo {0}.",
		"confirm_complete":    "Confirma que el trabajo está terminado.",
		"confirm_no_solution": "El ticket no tiene solución. ¿Completarlo de todos modos?",
		"unsupported_media":   "Solo se pueden adjuntar imágenes y vídeos.",
		"media_too_large":     "El archivo es demasiado grande.",
		"maintenance":         "El servicio está en mantenimiento.",
		"assignment_subject":  "Nuevo ticket asignado: {0}",
		"assignment_title":    "Ticket asignado",
		"assignment_body":     "{0} ({1}) en {2}, {3}. Prioridad: {4}.",
		"escalation_title":    "Ticket escalado",
	},
}

var translator *ut.UniversalTranslator

func init() {
	english := en.New()
	translator = ut.New(es.New(), english, es.New())
	for locale, catalog := range messages {
		trans, _ := translator.GetTranslator(locale)
		for key, text := range catalog {
			if err := trans.Add(key, text, false); err != nil {
				log.Printf("[i18n] Error adding %s/%s: %s\n", locale, key, err.Error())
			}
		}
	}
}

// RegisterValidatorTranslations installs the validator's default messages
// for every supported locale.
func RegisterValidatorTranslations(v *validator.Validate) error {
	transEn, _ := translator.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, transEn); err != nil {
		return err
	}
	transEs, _ := translator.GetTranslator("es")
	return es_translations.RegisterDefaultTranslations(v, transEs)
}

// Translator picks the first supported locale from the candidates, which
// may be bare tags or an Accept-Language header.
func Translator(candidates ...string) ut.Translator {
	var tags []string
	for _, c := range candidates {
		for _, part := range strings.Split(c, ",") {
			tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
			if tag == "" {
				continue
			}
			tag = strings.ToLower(strings.ReplaceAll(tag, "-", "_"))
			tags = append(tags, tag, strings.SplitN(tag, "_", 2)[0])
		}
	}
	tags = append(tags, DefaultLocale)
	trans, _ := translator.FindTranslator(tags...)
	return trans
}

// T translates key, falling back to the key itself when it is unknown.
func T(trans ut.Translator, key string, params ...string) string {
	s, err := trans.T(key, params...)
	if err != nil {
		return key
	}
	return s
}

// TranslateValidation flattens validator errors into field -> message.
func TranslateValidation(trans ut.Translator, err error) map[string]string {
	var verrs validator.ValidationErrors
	out := map[string]string{}
	errors.As(err, &verrs)
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(trans)
	}
	return out
}
