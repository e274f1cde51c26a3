package core

// # Error Codes Reference
//
// Technical errors are mapped to user messages with a code users can quote
// to support staff. Codes are grouped by category:
//
//	IMP001 - Missing columns: the file lacks headers required by the preset
//	IMP002 - System busy: too many imports in progress
//	IMP003 - Import cancelled
//	IMP004 - Import timed out
//	EXP001 - Nothing to export: no record survives search and filters
//	EXP002 - No columns to export: every exportable column is hidden
//	FILE001 - File too large
//	FILE002 - Unsupported format: only .csv and .xlsx are accepted
//	FILE003 - Unreadable file
//	FILE004 - No file selected
//	FILE005 - Empty file
//	PRE001 - Unknown record kind
//	ROW001 - Record not found
//	DB001 - Duplicate record
//	DB004 - Database unreachable
//	DB006 - Database timeout
//	RATE001 - Too many requests
//	ERR000 - Fallback, see the logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Import
	{
		pattern: "missing required columns",
		msg: UserMessage{
			Message: "Des colonnes obligatoires sont absentes du fichier",
			Action:  "Téléchargez le modèle et vérifiez les en-têtes",
			Code:    "IMP001",
		},
	},
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "Le système traite déjà d'autres imports",
			Action:  "Patientez un instant puis réessayez",
			Code:    "IMP002",
		},
	},
	{
		pattern: "import cancelled",
		msg: UserMessage{
			Message: "L'import a été annulé",
			Action:  "Relancez l'import lorsque vous êtes prêt",
			Code:    "IMP003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "La requête a été annulée",
			Action:  "Réessayez",
			Code:    "IMP003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "La requête a expiré",
			Action:  "Essayez avec un fichier plus petit ou réessayez plus tard",
			Code:    "IMP004",
		},
	},

	// Export
	{
		pattern: "no records to export",
		msg: UserMessage{
			Message: "Aucune donnée à exporter",
			Action:  "Modifiez la recherche ou les filtres",
			Code:    "EXP001",
		},
	},
	{
		pattern: "no columns to export",
		msg: UserMessage{
			Message: "Aucune colonne à exporter",
			Action:  "Affichez au moins une colonne exportable",
			Code:    "EXP002",
		},
	},

	// Files
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "Le fichier dépasse la taille maximale autorisée",
			Action:  "Découpez le fichier en plusieurs parties",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Le fichier dépasse la taille maximale autorisée",
			Action:  "Découpez le fichier en plusieurs parties",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "Format de fichier non pris en charge",
			Action:  "Utilisez un fichier .csv ou .xlsx",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unable to read file",
		msg: UserMessage{
			Message: "Le fichier est illisible",
			Action:  "Enregistrez-le au format CSV UTF-8 ou XLSX puis réessayez",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "Aucun fichier sélectionné",
			Action:  "Sélectionnez un fichier à importer",
			Code:    "FILE004",
		},
	},
	{
		pattern: "is empty",
		msg: UserMessage{
			Message: "Le fichier est vide",
			Action:  "Importez un fichier contenant une ligne d'en-têtes",
			Code:    "FILE005",
		},
	},

	// Presets and records
	{
		pattern: "unknown record kind",
		msg: UserMessage{
			Message: "Type de données inconnu",
			Action:  "Vérifiez l'adresse de la page",
			Code:    "PRE001",
		},
	},
	{
		pattern: "record not found",
		msg: UserMessage{
			Message: "Enregistrement introuvable",
			Action:  "Actualisez la liste",
			Code:    "ROW001",
		},
	},

	// Database
	{
		pattern: "duplicate",
		msg: UserMessage{
			Message: "Un enregistrement avec cet identifiant existe déjà",
			Action:  "Vérifiez les doublons dans votre fichier",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Impossible de joindre la base de données",
			Action:  "Réessayez dans quelques instants",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "L'opération a expiré",
			Action:  "Réessayez plus tard",
			Code:    "DB006",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Trop de requêtes",
			Action:  "Patientez un instant avant de réessayer",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Une erreur inattendue s'est produite",
	Action:  "Réessayez ou contactez le support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
