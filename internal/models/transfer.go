package models

type TransferResult struct {
	ID               string  `json:"id"`
	Host             string  `json:"host"`
	Direction        string  `json:"direction"`
	RemotePath       string  `json:"remote_path"`
	LocalPath        string  `json:"local_path"`
	Status           string  `json:"status"`
	Outcome          string  `json:"outcome"`
	Resumed          bool    `json:"resumed"`
	StartOffset      int64   `json:"start_offset"`
	TotalSizeBytes   int64   `json:"total_size_bytes"`
	TotalSizeHuman   string  `json:"total_size_human"`
	TransferredBytes int64   `json:"transferred_bytes"`
	Percentage       float64 `json:"percentage"`
	Error            string  `json:"error,omitempty"`
	OperationTime    string  `json:"operation_time"`
	Duration         string  `json:"duration"`
}

type DirectoryResult struct {
	Host          string   `json:"host"`
	Path          string   `json:"path"`
	Segments      []string `json:"segments"`
	Created       []string `json:"created"`
	OperationTime string   `json:"operation_time"`
}
