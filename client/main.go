// Dev/test client: compresses a local photo, sends it to the provenance
// service and prints the generated record.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"provenance-service/image"
	"provenance-service/models"
	"provenance-service/storage"
)

const contentType = "application/json"

var (
	serviceURL  = flag.String("url", "http://127.0.0.1:8080", "provenance service base URL")
	imagePath   = flag.String("image", "", "path to the photo to analyze")
	expandFirst = flag.Bool("expand", false, "also expand the first component's history")
	historyFile = flag.String("history", "./provenance_scans.json", "local scan history file")
)

func main() {
	flag.Parse()

	if *imagePath == "" {
		log.Fatal("-image is required")
	}

	data, err := os.ReadFile(*imagePath)
	if err != nil {
		log.Fatalf("Failed to read image file: %v", err)
	}

	dataURI, err := image.CompressToDataURI(data)
	if err != nil {
		log.Fatalf("Failed to compress image: %v", err)
	}
	log.Infof("Compressed %s to %d base64 chars", *imagePath, len(dataURI))

	result, err := analyze(dataURI)
	if err != nil {
		log.Fatalf("Analyze failed: %v", err)
	}

	fmt.Printf("%s: %s\n", result.Title, result.Summary)
	for _, event := range result.Timeline {
		fmt.Printf("  %s  %s: %s\n", event.Year, event.Event, event.Description)
	}
	for _, component := range result.Components {
		fmt.Printf("  [%s] %s\n", component.ConnectsAtYear, component.Name)
	}

	store := storage.NewStore(*historyFile, storage.DefaultLimit)
	scan := models.Scan{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UnixMilli(),
		ImageBase64: dataURI,
		Result:      *result,
	}
	if err := store.Save(scan); err != nil {
		log.Warnf("Failed to save scan locally: %v", err)
	}

	if *expandFirst && len(result.Components) > 0 {
		detail, err := expand(result.Components[0].Name, result.Title)
		if err != nil {
			log.Fatalf("Expand failed: %v", err)
		}
		fmt.Printf("\n%s expanded:\n", detail.Name)
		for _, event := range detail.History {
			fmt.Printf("  %s  %s: %s\n", event.Year, event.Event, event.Description)
		}
	}
}

func analyze(dataURI string) (*models.ProvenanceResult, error) {
	body, err := json.Marshal(models.AnalyzeRequest{Image: dataURI})
	if err != nil {
		return nil, err
	}

	var result models.ProvenanceResult
	if err := post(*serviceURL+"/api/analyze", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func expand(componentName, objectTitle string) (*models.ComponentDetailResult, error) {
	body, err := json.Marshal(models.ExpandRequest{ComponentName: componentName, ObjectTitle: objectTitle})
	if err != nil {
		return nil, err
	}

	var result models.ComponentDetailResult
	if err := post(*serviceURL+"/api/expand", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func post(url string, body []byte, out any) error {
	resp, err := http.Post(url, contentType, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s: %s", resp.Status, string(respBody))
	}

	return json.Unmarshal(respBody, out)
}
