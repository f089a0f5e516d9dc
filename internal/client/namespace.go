package client

import (
	"context"
	"encoding/json"
	"net/http"
)

const FileTypeDir = "DIR"

// NamespaceService covers /namespace and /id.
type NamespaceService struct {
	service
}

type FileAttributesParams struct {
	// Children includes the directory listing.
	Children bool `url:"children,omitempty"`
	// Locality includes the file locality (ONLINE, NEARLINE, ...).
	Locality bool `url:"locality,omitempty"`
	// Locations includes the pools holding replicas.
	Locations bool `url:"locations,omitempty"`
	// QoS includes current and target quality of service.
	QoS bool `url:"qos,omitempty"`
	// Limit caps the number of children returned.
	Limit int `url:"limit,omitempty"`
	// Offset skips the first children of the listing.
	Offset int `url:"offset,omitempty"`
}

type FileAttributes struct {
	FileName     string           `json:"fileName,omitempty"`
	FileType     string           `json:"fileType,omitempty"`
	PnfsID       string           `json:"pnfsId,omitempty"`
	Size         *int64           `json:"size,omitempty"`
	Mode         int              `json:"mode,omitempty"`
	Mtime        int64            `json:"mtime,omitempty"`
	CreationTime int64            `json:"creationTime,omitempty"`
	FileLocality string           `json:"fileLocality,omitempty"`
	Locations    []string         `json:"locations,omitempty"`
	CurrentQoS   string           `json:"currentQos,omitempty"`
	TargetQoS    string           `json:"targetQos,omitempty"`
	Children     []FileAttributes `json:"children,omitempty"`
}

func (a *FileAttributes) IsDir() bool {
	return a.FileType == FileTypeDir
}

// GetFileAttributes finds metadata and optionally directory contents.
func (s *NamespaceService) GetFileAttributes(ctx context.Context, path string, params *FileAttributesParams) (*FileAttributes, error) {
	var attrs FileAttributes
	if err := s.client.get(ctx, "/namespace/"+escapePath(path), params, &attrs); err != nil {
		return nil, err
	}
	return &attrs, nil
}

// CmrResources modifies a file or directory. body carries an "action"
// item (mkdir, mv, qos, ...) and its arguments.
func (s *NamespaceService) CmrResources(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return s.client.send(ctx, http.MethodPost, "/namespace/"+escapePath(path), nil, body)
}

// DeleteFileEntry deletes a file or directory.
func (s *NamespaceService) DeleteFileEntry(ctx context.Context, path string) error {
	_, err := s.client.call(ctx, http.MethodDelete, "/namespace/"+escapePath(path), nil, nil, nil)
	return err
}

// GetAttributes discovers information about a file from its PNFS-ID.
func (s *NamespaceService) GetAttributes(ctx context.Context, pnfsid string) (*FileAttributes, error) {
	var attrs FileAttributes
	if err := s.client.get(ctx, "/id/"+seg(pnfsid), nil, &attrs); err != nil {
		return nil, err
	}
	return &attrs, nil
}

// BringOnline stages a file by requesting the disk+tape QoS.
func (s *NamespaceService) BringOnline(ctx context.Context, path string) (json.RawMessage, error) {
	return s.CmrResources(ctx, path, map[string]string{
		"action": "qos",
		"target": "disk+tape",
	})
}
