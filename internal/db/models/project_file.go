package models

import "time"

// FileTypeCustomCSV marks ad-hoc uploads added outside the platform's
// required-file list.
const FileTypeCustomCSV = "custom-csv"

// ProjectFile is the metadata record for one uploaded artifact backing a
// project. The bytes live in object storage at FilePath; every row should have
// a corresponding object, though orphans on either side are a tolerated
// failure mode cleaned up best-effort.
type ProjectFile struct {
	ID         string    `db:"id" json:"id"`
	ProjectID  string    `db:"project_id" json:"project_id"`
	FileName   string    `db:"file_name" json:"file_name"`
	FileType   string    `db:"file_type" json:"file_type"`
	FilePath   string    `db:"file_path" json:"file_path"`
	FileSize   int64     `db:"file_size" json:"file_size"`
	Checksum   string    `db:"checksum" json:"checksum"`
	IsInitial  bool      `db:"is_initial" json:"is_initial"`
	UploadDate time.Time `db:"upload_date" json:"upload_date"`
}
