// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package stores

import (
	"context"
	"errors"
	"fmt"
	"log"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// GeocodingKeyDisplayName is the display name of the Maps API key looked up
// through Application Default Credentials.
const GeocodingKeyDisplayName = "GroSnap Geocoding Key"

// APIKeyFromADC finds the Maps API key named displayName in the project of
// the Application Default Credentials. projectID overrides the project when
// the credentials do not carry one.
func APIKeyFromADC(ctx context.Context, projectID, displayName string) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}

	if creds.ProjectID != "" {
		projectID = creds.ProjectID
	}

	if projectID == "" {
		return "", errors.New("no project ID in credentials, set GOOGLE_CLOUD_PROJECT")
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	it := client.ListKeys(ctx, &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	})

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != displayName {
			continue
		}

		// ListKeys redacts the secret
		log.Printf("Found key resource '%s', retrieving secret...", key.Name)

		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key '%s' found but its key string is empty", displayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("key with display name '%s' not found in project %s", displayName, projectID)
}

// ResolveMapsAPIKey returns apiKey when set, falling back to APIKeyFromADC.
// An empty key disables geocoding without failing.
func ResolveMapsAPIKey(ctx context.Context, apiKey, projectID string) string {
	if apiKey != "" {
		return apiKey
	}

	log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

	key, err := APIKeyFromADC(ctx, projectID, GeocodingKeyDisplayName)
	if err != nil {
		log.Printf("Failed to retrieve API key via ADC: %v. Stores without coordinates won't be geocoded.", err)

		return ""
	}

	log.Println("✅ Successfully retrieved Google Maps API Key via ADC")

	return key
}
