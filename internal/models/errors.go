package models

import (
	"fmt"
	"strings"
)

// ValidationError signale un champ manquant ou mal formé, détecté AVANT tout
// appel réseau.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("champ %q invalide: %s", e.Field, e.Reason)
}

// PartialCreationError indique qu'une ou plusieurs étapes de la création d'un
// employé ont déjà été validées avant l'échec. Aucun rollback n'est effectué :
// la fiche ou le dossier de stockage peuvent persister sans le document prévu.
type PartialCreationError struct {
	CompletedSteps []string
	FailedStep     string
	Err            error
}

func (e *PartialCreationError) Error() string {
	return fmt.Sprintf("création partielle: étape %q échouée après [%s]: %v",
		e.FailedStep, strings.Join(e.CompletedSteps, ", "), e.Err)
}

func (e *PartialCreationError) Unwrap() error {
	return e.Err
}
