// Package stubllm is a deterministic, no-network llm.Client for local
// end-to-end tests. It returns schema-valid JSON so downstream parsing and
// handler plumbing exercise the full pipeline.
package stubllm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"provenance-service/models"
)

type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) SourceName() string { return "Stub" }

func (c *Client) GenerateProvenance(_ context.Context, imageDataURI string) (string, error) {
	// Stable per-input so repeated runs compare equal.
	sum := sha256.Sum256([]byte(imageDataURI))
	short := hex.EncodeToString(sum[:4])

	result := models.ProvenanceResult{
		Title:   fmt.Sprintf("Stub Object (%s)", short),
		Summary: "A quiet witness to the hands and centuries that shaped it.",
		Timeline: []models.TimelineEvent{
			{Year: "2000", Event: "Mass production", Description: "Automated lines make it a household object"},
			{Year: "1950", Event: "Industrial refinement", Description: "Postwar factories standardize the design"},
			{Year: "1850", Event: "Workshop era", Description: "Craftsmen produce it in small batches"},
			{Year: "1700", Event: "First recorded form", Description: "Earliest surviving examples appear"},
		},
		Components: []models.Component{
			{
				Name:           "Steel",
				ConnectsAtYear: "1850",
				History: []models.TimelineEvent{
					{Year: "1856", Event: "Bessemer process", Description: "Cheap bulk steel transforms industry"},
					{Year: "1200 BC", Event: "Early ironworking", Description: "Smiths learn to harden iron with carbon"},
				},
			},
			{
				Name:           "Hardwood",
				ConnectsAtYear: "1700",
				History: []models.TimelineEvent{
					{Year: "1800s", Event: "Steam sawmills", Description: "Milled lumber becomes widely available"},
					{Year: "Antiquity", Event: "Hand-hewn timber", Description: "Wood worked with axe and adze"},
				},
			},
			{
				Name:           "Lacquer",
				ConnectsAtYear: "1950",
				History: []models.TimelineEvent{
					{Year: "1920s", Event: "Synthetic lacquers", Description: "Nitrocellulose finishes speed production"},
					{Year: "5000 BC", Event: "Tree-sap coatings", Description: "East Asian artisans seal wood with sap"},
				},
			},
		},
	}

	b, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Client) ExpandComponent(_ context.Context, componentName, objectTitle string) (string, error) {
	result := models.ComponentDetailResult{
		Name: componentName,
		History: []models.TimelineEvent{
			{Year: "2010", Event: "Modern refinement", Description: fmt.Sprintf("Advanced processing of %s matures", componentName)},
			{Year: "1960", Event: "Industrial scale", Description: "Global supply chains form"},
			{Year: "1880", Event: "Scientific study", Description: "Material properties systematically measured"},
			{Year: "1500", Event: "Trade expansion", Description: fmt.Sprintf("Used widely beyond %s", objectTitle)},
			{Year: "Antiquity", Event: "First use", Description: "Earliest known human application"},
		},
	}

	b, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
