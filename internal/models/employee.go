package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Employee représente une fiche employé. EmpID est fourni par l'opérateur et
// sert de clé de partition dans ScyllaDB.
type Employee struct {
	EmpID              string     `json:"emp_id"`
	Name               string     `json:"name"`
	Designation        string     `json:"designation,omitempty"`
	DateOfJoining      string     `json:"date_of_joining,omitempty"`
	PhoneNo            string     `json:"phone_no,omitempty"`
	Email              string     `json:"email"`
	Address            string     `json:"address,omitempty"`
	DOB                string     `json:"dob,omitempty"`
	EmergencyContactNo string     `json:"emergency_contact_no,omitempty"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// StoragePath enregistre le dossier MinIO réservé à un employé.
type StoragePath struct {
	EmpID      string `json:"emp_id"`
	FolderPath string `json:"folder_path"`
	FolderType string `json:"folder_type"`
}

// EmployeeDocument référence un fichier uploadé (photo de profil) lié à un employé.
type EmployeeDocument struct {
	ID         gocql.UUID `json:"id"`
	EmpID      string     `json:"emp_id"`
	FileName   string     `json:"file_name"`
	FilePath   string     `json:"file_path"`
	FileType   string     `json:"file_type"`
	UploadedBy string     `json:"uploaded_by"`
	FileURL    string     `json:"file_url"`
	UploadedAt time.Time  `json:"uploaded_at"`
}
