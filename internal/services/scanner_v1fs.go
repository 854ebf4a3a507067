//go:build !nov1fs

package services

import (
	amaasclient "github.com/trendmicro/tm-v1-fs-golang-sdk"
)

func init() {
	defaultOpener = openV1FSSession
}

type v1fsSession struct {
	client *amaasclient.AmaasClient
}

func openV1FSSession(region, apiKey string) (scanSession, error) {
	client, err := amaasclient.NewClient(apiKey, region)
	if err != nil {
		return nil, err
	}
	return &v1fsSession{client: client}, nil
}

func (s *v1fsSession) ScanFile(path string, tags []string) (string, error) {
	return s.client.ScanFile(path, tags)
}

func (s *v1fsSession) Close() {
	s.client.Destroy()
}
