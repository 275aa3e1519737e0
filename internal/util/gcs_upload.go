package util

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// UploadAttachmentToGCS decodes a base64 payload (optionally carrying a
// "data:<mime>;base64," prefix) and writes it to the given object. Returns the
// gs:// URL and the byte size written.
func UploadAttachmentToGCS(base64Data, bucketName, objectName, contentType string) (string, int64, error) {
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", 0, err
	}
	defer client.Close()

	if strings.Contains(base64Data, ",") {
		parts := strings.Split(base64Data, ",")
		base64Data = parts[1]
	}

	data, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return "", 0, err
	}

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	sizeBytes, err := w.Write(data)
	if err != nil {
		return "", 0, err
	}

	if err := w.Close(); err != nil {
		return "", 0, err
	}

	return fmt.Sprintf("gs://%s/%s", bucketName, objectName), int64(sizeBytes), nil
}

// ParseGSURL splits gs://bucket/object/path into its parts.
func ParseGSURL(gsURL string) (bucket string, objectPath string, err error) {
	gsURL = strings.TrimSpace(gsURL)
	if gsURL == "" {
		return "", "", fmt.Errorf("empty gs url")
	}
	if !strings.HasPrefix(gsURL, "gs://") {
		return "", "", fmt.Errorf("invalid gs url (must start with gs://): %s", gsURL)
	}

	rest := strings.TrimPrefix(gsURL, "gs://")
	slash := strings.Index(rest, "/")
	if slash < 0 || slash == len(rest)-1 {
		return "", "", fmt.Errorf("invalid gs url format: %s", gsURL)
	}

	bucket = strings.TrimSpace(rest[:slash])
	objectPath = strings.TrimSpace(rest[slash+1:])
	if bucket == "" || objectPath == "" {
		return "", "", fmt.Errorf("invalid gs url format: %s", gsURL)
	}

	return bucket, objectPath, nil
}

// DeleteGCSFolder removes every object under prefix/. Used when attachments
// for a document field are wholesale-replaced. Returns the deleted object
// names.
func DeleteGCSFolder(bucketName, prefix string) ([]string, error) {
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	bkt := client.Bucket(bucketName)
	prefix = strings.TrimSuffix(prefix, "/")

	deleted := []string{}

	it := bkt.Objects(ctx, &storage.Query{Prefix: prefix + "/"})
	for {
		obj, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		if err := bkt.Object(obj.Name).Delete(ctx); err != nil {
			return nil, err
		}
		deleted = append(deleted, obj.Name)
	}

	return deleted, nil
}
