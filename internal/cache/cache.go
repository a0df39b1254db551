package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"effectif_back_end/internal/database"
	"effectif_back_end/internal/models"
)

const (
	// EmployeeListTTL borne la fraîcheur de la liste employés en cache.
	EmployeeListTTL = 5 * time.Minute
)

// La liste des COMPTES n'est jamais mise en cache : elle est relue en entier
// chez le fournisseur après chaque mutation.

func employeeListKey(sortField, direction string) string {
	return fmt.Sprintf("employees:all:%s:%s", sortField, direction)
}

// GetEmployeeList récupère une liste triée depuis Redis. ok=false si absente.
func GetEmployeeList(ctx context.Context, sortField, direction string) ([]models.Employee, bool) {
	data, err := database.Redis.Get(ctx, employeeListKey(sortField, direction)).Result()
	if err != nil {
		return nil, false
	}
	var employees []models.Employee
	if err := json.Unmarshal([]byte(data), &employees); err != nil {
		return nil, false
	}
	return employees, true
}

// SetEmployeeList met en cache une liste triée. Les erreurs sont ignorées :
// le cache est un accélérateur, jamais une source de vérité.
func SetEmployeeList(ctx context.Context, sortField, direction string, employees []models.Employee) {
	data, err := json.Marshal(employees)
	if err != nil {
		return
	}
	database.Redis.Set(ctx, employeeListKey(sortField, direction), data, EmployeeListTTL)
}

// InvalidateEmployeeLists purge toutes les variantes de tri après une mutation.
func InvalidateEmployeeLists(ctx context.Context) {
	iter := database.Redis.Scan(ctx, 0, "employees:all:*", 0).Iterator()
	for iter.Next(ctx) {
		database.Redis.Del(ctx, iter.Val())
	}
}
