package object_storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dapr/go-sdk/client"
)

// ObjectStorage any S3-like storage solution holding composition assets
// (source videos, audio tracks, logos, fonts) and the rendered results
type ObjectStorage[T BindingProxy] struct {
	// Destination path for all downloads
	assetsPath string
	// Name of the Dapr component to use
	componentName string
	// Client to query the backend storage
	client *T
	// Current running context
	ctx *context.Context
}

// NewDaprObjectStorage Prod ready constructor for an object-storage using Dapr
func NewDaprObjectStorage(ctx *context.Context, daprClient *client.Client, component string) (*ObjectStorage[client.Client], error) {
	dir, err := os.MkdirTemp("", "assets-")
	if err != nil {
		return nil, err
	}
	return &ObjectStorage[client.Client]{
		assetsPath:    dir,
		componentName: component,
		client:        daprClient,
		ctx:           ctx,
	}, nil
}

// NewObjectStorage General purpose object storage
func NewObjectStorage[T BindingProxy](ctx *context.Context, assetsPath string, client T) *ObjectStorage[T] {
	return &ObjectStorage[T]{
		assetsPath:    assetsPath,
		componentName: "",
		client:        &client,
		ctx:           ctx,
	}
}

// Proxy to query the backend storage
type BindingProxy interface {
	// Invoke
	InvokeBinding(ctx context.Context, in *client.InvokeBindingRequest) (out *client.BindingEvent, err error)
}

// Dir Local directory all downloads are written into
func (od ObjectStorage[T]) Dir() string {
	return od.assetsPath
}

// Cleanup Remove every downloaded asset
func (od ObjectStorage[T]) Cleanup() error {
	return os.RemoveAll(od.assetsPath)
}

// Download a file from the backend storage into the assets directory,
// returning its local path
func (od ObjectStorage[T]) Download(key string) (string, error) {
	res, err := (*od.client).InvokeBinding(*od.ctx, &client.InvokeBindingRequest{
		Name:      od.componentName,
		Operation: "get",
		Data:      nil,
		Metadata:  map[string]string{"key": key},
	})
	if err != nil {
		return "", err
	}
	writePath := filepath.Join(od.assetsPath, localName(key))
	input := bytes.NewBuffer(res.Data)
	decoder := base64.NewDecoder(base64.StdEncoding, input)
	output, err := os.Create(writePath)
	if err != nil {
		return "", err
	}
	defer output.Close()
	if _, err := io.Copy(output, decoder); err != nil {
		return "", err
	}
	return writePath, nil
}

// Upload Uploads a file on the backend storage
func (od ObjectStorage[T]) Upload(path string, key string) error {
	b64bytes, err := readFileToB64(path)
	if err != nil {
		return err
	}
	_, err = (*od.client).InvokeBinding(*od.ctx, &client.InvokeBindingRequest{
		Name:      od.componentName,
		Operation: "create",
		Data:      b64bytes,
		Metadata: map[string]string{
			"key": key,
		},
	})
	return err
}

// Delete a file in the remote object storage
func (od ObjectStorage[T]) Delete(key string) error {
	_, err := (*od.client).InvokeBinding(*od.ctx, &client.InvokeBindingRequest{
		Name:      od.componentName,
		Operation: "delete",
		Data:      nil,
		Metadata: map[string]string{
			"key": key,
		},
	})
	return err
}

// Bucket keys may contain path separators, the local copy must stay inside
// the assets directory
func localName(key string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(key)
}

// Read a file into a base64 bytes-array
func readFileToB64(path string) ([]byte, error) {
	var buf bytes.Buffer
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	reader := bufio.NewReader(file)
	b64enc := base64.NewEncoder(base64.StdEncoding, &buf)
	// Make a 10 MB buffer
	p := make([]byte, 10*1024*1024)
	for {
		n, err := reader.Read(p)
		if n > 0 {
			if _, werr := b64enc.Write(p[:n]); werr != nil {
				return nil, werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if err := b64enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
