package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements pour les requêtes fréquentes sur le keyspace RH
	stmtInsertEmployee  *gocql.Query
	stmtSelectEmployees *gocql.Query
	stmtUpdateEmployee  *gocql.Query
	stmtDeleteEmployee  *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements initialise les prepared statements
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		session, err := GetHRSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements: %v", err)
			return
		}

		stmtInsertEmployee = session.Query(`INSERT INTO employees (emp_id, name, designation, date_of_joining, phone_no, email, address, dob, emergency_contact_no, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

		stmtSelectEmployees = session.Query(`SELECT emp_id, name, designation, date_of_joining, phone_no, email, address, dob, emergency_contact_no, created_at, updated_at
			FROM employees`)

		stmtUpdateEmployee = session.Query(`UPDATE employees SET name = ?, designation = ?, date_of_joining = ?, phone_no = ?, email = ?, address = ?, dob = ?, emergency_contact_no = ?, updated_at = ?
			WHERE emp_id = ?`)

		stmtDeleteEmployee = session.Query("DELETE FROM employees WHERE emp_id = ?")

		log.Println("✅ Prepared statements initialisés")
	})
}

func GetPreparedInsertEmployee() *gocql.Query {
	return stmtInsertEmployee
}

func GetPreparedSelectEmployees() *gocql.Query {
	return stmtSelectEmployees
}

func GetPreparedUpdateEmployee() *gocql.Query {
	return stmtUpdateEmployee
}

func GetPreparedDeleteEmployee() *gocql.Query {
	return stmtDeleteEmployee
}
