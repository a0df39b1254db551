package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Compteurs exposés sur /metrics
var (
	// AccountOps compte les opérations sur les comptes, par opération et issue.
	// operation: create, update, delete — outcome: applied, noop, duplicate,
	// invalid_credential, permission_denied, transient
	AccountOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "effectif_account_operations_total",
		Help: "Opérations sur les comptes du fournisseur d'identité",
	}, []string{"operation", "outcome"})

	// EmployeeOps compte les opérations CRUD sur les fiches employés.
	EmployeeOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "effectif_employee_operations_total",
		Help: "Opérations CRUD sur les fiches employés",
	}, []string{"operation", "outcome"})

	// PartialCreations compte les créations d'employés interrompues après au
	// moins une étape validée (fenêtre d'incohérence connue, non remédiée).
	PartialCreations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "effectif_employee_partial_creations_total",
		Help: "Créations d'employés laissées dans un état partiel",
	})
)
