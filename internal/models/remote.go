package models

import "time"

// RemoteFile is one entry of a remote listing. Size is the server's answer at
// listing time and is never re-queried while a transfer runs.
type RemoteFile struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	IsDir   bool      `json:"is_dir"`
	ModTime time.Time `json:"mod_time,omitempty"`
}

type ListResult struct {
	Host           string       `json:"host"`
	Path           string       `json:"path"`
	Items          []RemoteFile `json:"items"`
	TotalFiles     int          `json:"total_files"`
	TotalSizeBytes int64        `json:"total_size_bytes"`
	TotalSizeHuman string       `json:"total_size_human"`
	OperationTime  string       `json:"operation_time"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}
