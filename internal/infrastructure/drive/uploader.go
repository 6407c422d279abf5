package drive

import (
	"context"
	"log"
	"mime"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// Uploader publishes local files (rendered pages) to a Google Drive folder.
type Uploader struct {
	srv      *gdrive.Service
	folderID string
}

func NewUploader(srv *gdrive.Service, folderID string) *Uploader {
	return &Uploader{srv: srv, folderID: folderID}
}

// UploadFile uploads localPath into the folder. dstFileName overrides the
// name; empty uses the base name of localPath. Returns fileID and webViewLink.
func (u *Uploader) UploadFile(ctx context.Context, localPath, dstFileName string) (string, string, error) {
	if dstFileName == "" {
		dstFileName = filepath.Base(localPath)
	}
	f, err := os.Open(localPath)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	mimeType := mime.TypeByExtension(filepath.Ext(dstFileName))
	if mimeType == "" {
		mimeType = "text/html; charset=utf-8"
	}

	file := &gdrive.File{
		Name:     dstFileName,
		MimeType: mimeType,
	}
	if u.folderID != "" {
		file.Parents = []string{u.folderID}
	}

	created, err := u.srv.Files.Create(file).
		Fields("id", "webViewLink").
		Context(ctx).
		Media(f, googleapi.ChunkSize(2*1024*1024), googleapi.ContentType(mimeType)).
		Do()
	if err != nil {
		return "", "", errors.Wrap(err, "drive upload failed")
	}
	log.Printf("[drive] uploaded %s id=%s", dstFileName, created.Id)
	return created.Id, created.WebViewLink, nil
}

// Publish implements page.Publisher.
func (u *Uploader) Publish(ctx context.Context, localPath, name string) (string, error) {
	_, link, err := u.UploadFile(ctx, localPath, name)
	return link, err
}
