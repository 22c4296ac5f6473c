package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormatValidationError joins every rule failure into one line.
func FormatValidationError(err error) string {
	return strings.Join(FormatValidationErrors(err), "; ")
}

// FormatValidationErrors returns one French message per failed field.
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			messages = append(messages, getFieldErrorMessage(fieldError))
		}
		return messages
	}
	return []string{err.Error()}
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s est obligatoire", field)
	case "email":
		return fmt.Sprintf("%s doit être une adresse email valide", field)
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s doit contenir au moins %s caractères", field, fe.Param())
		}
		return fmt.Sprintf("%s doit être au minimum %s", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s doit contenir au plus %s caractères", field, fe.Param())
		}
		return fmt.Sprintf("%s doit être au maximum %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s doit être l'une des valeurs: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid":
		return fmt.Sprintf("%s doit être un identifiant valide", field)
	case "datetime":
		return fmt.Sprintf("%s doit être une date au format %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s n'est pas valide", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"LastName":     "Nom",
		"FirstName":    "Prénom",
		"Email":        "Email",
		"Phone":        "Téléphone",
		"BirthDate":    "Date de naissance",
		"BirthPlace":   "Lieu de naissance",
		"ContestID":    "Concours",
		"TrackID":      "Filière",
		"Nupcan":       "NUPCAN",
		"Amount":       "Montant",
		"Method":       "Méthode de paiement",
		"Status":       "Statut",
		"Password":     "Mot de passe",
		"NewPassword":  "Nouveau mot de passe",
		"DocumentType": "Type de document",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
