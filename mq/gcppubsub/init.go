package gcppubsub

import (
	"errors"
	"os"
)

func GetGCPProjectID() (string, error) {
	projectID := os.Getenv("GCP_PROJECT_ID")
	if projectID == "" {
		return "", errors.New("GCP_PROJECT_ID environment variable must be set")
	}
	return projectID, nil
}
