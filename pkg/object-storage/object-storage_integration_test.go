//go:build integration
// +build integration

// Integration testing for object-storage. Dapr must be booted up for this to run
package object_storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"testing"

	"github.com/dapr/go-sdk/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const (
	DaprComponent = "object-store"
	// Name of the asset used to test download
	TestDownloadAssetKey = "testdl"
	// Name of the asset used to test deletion
	TestDeleteAssetKey = "testdelete"
)

var testContent = []byte("integration asset payload")

type e2eTestSuite struct {
	suite.Suite
	client   client.Client
	objStore *ObjectStorage[client.Client]
}

func (s *e2eTestSuite) SetupSuite() {
	dir, err := os.MkdirTemp("", "prefix")
	if err != nil {
		s.Fail(err.Error())
	}
	// Check if the sidecar is up
	daprClient, err := client.NewClient()
	if err != nil {
		fmt.Println("DAPR IS NOT RUNNING")
		s.Fail(err.Error())
	}
	s.client = daprClient
	ctx := context.Background()
	// Seed the bucket with assets to download and delete later
	err = seed(&s.client, TestDownloadAssetKey)
	if err != nil {
		s.Fail(err.Error())
	}
	err = seed(&s.client, TestDeleteAssetKey)
	if err != nil {
		s.Fail(err.Error())
	}
	s.objStore = &ObjectStorage[client.Client]{
		assetsPath:    dir,
		componentName: DaprComponent,
		client:        &daprClient,
		ctx:           &ctx,
	}
}

func (s *e2eTestSuite) TestDownload_Int() {
	downloadedPath, err := s.objStore.Download(TestDownloadAssetKey)
	if err != nil {
		s.T().Fatal(err)
	}
	actual, err := os.ReadFile(downloadedPath)
	if err != nil {
		s.T().Fatal(err)
	}
	assert.Equal(s.T(), string(testContent), string(actual))
}

func (s *e2eTestSuite) TestDownload_Int_NotExists() {
	_, err := s.objStore.Download("notexists")
	if err == nil {
		s.T().Fatal("expected an error")
	}
	assert.Contains(s.T(), err.Error(), "does not exist")
}

func (s *e2eTestSuite) TestUpload_Int() {
	file := path.Join(s.objStore.Dir(), "upload.bin")
	if err := os.WriteFile(file, testContent, 0644); err != nil {
		s.T().Fatal(err)
	}
	err := s.objStore.Upload(file, "upload.bin")
	if err != nil {
		s.T().Fatal(err)
	}
}

func (s *e2eTestSuite) TestDelete_Int() {
	// Check that the file can be downloaded
	_, err := s.objStore.Download(TestDeleteAssetKey)
	if err != nil {
		s.T().Fatal(err)
	}
	// Then delete it
	err = s.objStore.Delete(TestDeleteAssetKey)
	if err != nil {
		s.T().Fatal(err)
	}
	// And check that it cannot be downloaded anymore
	_, err = s.objStore.Download(TestDeleteAssetKey)
	if err == nil {
		s.T().Fatal("expected an error")
	}
}

func TestE2ETestSuite(t *testing.T) {
	suite.Run(t, &e2eTestSuite{})
}

func seed(daprClient *client.Client, keyName string) error {
	b64Content := make([]byte, base64.StdEncoding.EncodedLen(len(testContent)))
	base64.StdEncoding.Encode(b64Content, testContent)
	_, err := (*daprClient).InvokeBinding(context.Background(), &client.InvokeBindingRequest{
		Name:      DaprComponent,
		Operation: "create",
		Data:      b64Content,
		Metadata: map[string]string{
			"key": keyName,
		},
	})
	return err
}
