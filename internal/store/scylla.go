package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"effectif_back_end/internal/database"
	"effectif_back_end/internal/models"
)

// ScyllaEmployeeStore implémente EmployeeStore sur le keyspace RH.
type ScyllaEmployeeStore struct{}

func NewScyllaEmployeeStore() *ScyllaEmployeeStore {
	return &ScyllaEmployeeStore{}
}

func (s *ScyllaEmployeeStore) Insert(ctx context.Context, e models.Employee) error {
	session, err := database.GetHRSession()
	if err != nil {
		return err
	}

	now := time.Now()
	if q := database.GetPreparedInsertEmployee(); q != nil {
		return q.WithContext(ctx).Bind(e.EmpID, e.Name, e.Designation, e.DateOfJoining,
			e.PhoneNo, e.Email, e.Address, e.DOB, e.EmergencyContactNo, now, now).Exec()
	}
	return session.Query(`INSERT INTO employees (emp_id, name, designation, date_of_joining, phone_no, email, address, dob, emergency_contact_no, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EmpID, e.Name, e.Designation, e.DateOfJoining, e.PhoneNo, e.Email,
		e.Address, e.DOB, e.EmergencyContactNo, now, now).WithContext(ctx).Exec()
}

func (s *ScyllaEmployeeStore) List(ctx context.Context) ([]models.Employee, error) {
	session, err := database.GetHRSession()
	if err != nil {
		return nil, err
	}

	var iter *gocql.Iter
	if q := database.GetPreparedSelectEmployees(); q != nil {
		iter = q.WithContext(ctx).Iter()
	} else {
		iter = session.Query(`SELECT emp_id, name, designation, date_of_joining, phone_no, email, address, dob, emergency_contact_no, created_at, updated_at
			FROM employees`).WithContext(ctx).Iter()
	}

	var employees []models.Employee
	var e models.Employee
	var createdAt, updatedAt time.Time

	for iter.Scan(&e.EmpID, &e.Name, &e.Designation, &e.DateOfJoining, &e.PhoneNo,
		&e.Email, &e.Address, &e.DOB, &e.EmergencyContactNo, &createdAt, &updatedAt) {
		c, u := createdAt, updatedAt
		e.CreatedAt = &c
		e.UpdatedAt = &u
		employees = append(employees, e)
		e = models.Employee{} // Reset pour la prochaine itération
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("erreur lecture employés: %v", err)
	}
	return employees, nil
}

func (s *ScyllaEmployeeStore) Update(ctx context.Context, e models.Employee) error {
	session, err := database.GetHRSession()
	if err != nil {
		return err
	}

	now := time.Now()
	if q := database.GetPreparedUpdateEmployee(); q != nil {
		return q.WithContext(ctx).Bind(e.Name, e.Designation, e.DateOfJoining, e.PhoneNo,
			e.Email, e.Address, e.DOB, e.EmergencyContactNo, now, e.EmpID).Exec()
	}
	return session.Query(`UPDATE employees SET name = ?, designation = ?, date_of_joining = ?, phone_no = ?, email = ?, address = ?, dob = ?, emergency_contact_no = ?, updated_at = ?
		WHERE emp_id = ?`,
		e.Name, e.Designation, e.DateOfJoining, e.PhoneNo, e.Email, e.Address,
		e.DOB, e.EmergencyContactNo, now, e.EmpID).WithContext(ctx).Exec()
}

func (s *ScyllaEmployeeStore) Delete(ctx context.Context, empID string) error {
	session, err := database.GetHRSession()
	if err != nil {
		return err
	}
	if q := database.GetPreparedDeleteEmployee(); q != nil {
		return q.WithContext(ctx).Bind(empID).Exec()
	}
	return session.Query("DELETE FROM employees WHERE emp_id = ?", empID).WithContext(ctx).Exec()
}

func (s *ScyllaEmployeeStore) InsertStoragePath(ctx context.Context, p models.StoragePath) error {
	session, err := database.GetHRSession()
	if err != nil {
		return err
	}
	return session.Query(`INSERT INTO storage_paths (emp_id, folder_path, folder_type) VALUES (?, ?, ?)`,
		p.EmpID, p.FolderPath, p.FolderType).WithContext(ctx).Exec()
}

func (s *ScyllaEmployeeStore) InsertDocument(ctx context.Context, d models.EmployeeDocument) error {
	session, err := database.GetHRSession()
	if err != nil {
		return err
	}
	return session.Query(`INSERT INTO employee_documents (emp_id, doc_id, file_name, file_path, file_type, uploaded_by, file_url, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.EmpID, d.ID, d.FileName, d.FilePath, d.FileType, d.UploadedBy, d.FileURL, d.UploadedAt).WithContext(ctx).Exec()
}

func (s *ScyllaEmployeeStore) ListDocuments(ctx context.Context, empID string) ([]models.EmployeeDocument, error) {
	session, err := database.GetHRSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT emp_id, doc_id, file_name, file_path, file_type, uploaded_by, file_url, uploaded_at
		FROM employee_documents WHERE emp_id = ?`, empID).WithContext(ctx).Iter()

	var docs []models.EmployeeDocument
	var d models.EmployeeDocument
	for iter.Scan(&d.EmpID, &d.ID, &d.FileName, &d.FilePath, &d.FileType, &d.UploadedBy, &d.FileURL, &d.UploadedAt) {
		docs = append(docs, d)
		d = models.EmployeeDocument{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("erreur lecture documents: %v", err)
	}
	return docs, nil
}

func (s *ScyllaEmployeeStore) DeleteDocument(ctx context.Context, empID string, id string) error {
	session, err := database.GetHRSession()
	if err != nil {
		return err
	}
	docID, err := gocql.ParseUUID(id)
	if err != nil {
		return fmt.Errorf("doc_id invalide: %v", err)
	}
	return session.Query("DELETE FROM employee_documents WHERE emp_id = ? AND doc_id = ?",
		empID, docID).WithContext(ctx).Exec()
}

// ScyllaFlagStore implémente reconcile.FlagColumnStore sur la table
// users_admin_flags : l'emplacement "colonne dédiée" du flag admin.
type ScyllaFlagStore struct{}

func NewScyllaFlagStore() *ScyllaFlagStore {
	return &ScyllaFlagStore{}
}

func (s *ScyllaFlagStore) GetAll(ctx context.Context) (map[string]bool, error) {
	session, err := database.GetHRSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query("SELECT account_id, is_admin FROM users_admin_flags").WithContext(ctx).Iter()

	flags := make(map[string]bool)
	var accountID string
	var isAdmin bool
	for iter.Scan(&accountID, &isAdmin) {
		flags[accountID] = isAdmin
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("erreur lecture flags admin: %v", err)
	}
	return flags, nil
}

func (s *ScyllaFlagStore) Set(ctx context.Context, accountID string, isAdmin bool) error {
	session, err := database.GetHRSession()
	if err != nil {
		return err
	}
	return session.Query("INSERT INTO users_admin_flags (account_id, is_admin) VALUES (?, ?)",
		accountID, isAdmin).WithContext(ctx).Exec()
}

func (s *ScyllaFlagStore) Delete(ctx context.Context, accountID string) error {
	session, err := database.GetHRSession()
	if err != nil {
		return err
	}
	return session.Query("DELETE FROM users_admin_flags WHERE account_id = ?",
		accountID).WithContext(ctx).Exec()
}
