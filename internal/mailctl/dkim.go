package mailctl

import (
	"fmt"
	"io"

	"github.com/edvin/mailpanel/internal/model"
)

// RefreshDKIM re-checks the DKIM record of one domain and prints the result.
func RefreshDKIM(client *Client, domainID string, out io.Writer) error {
	resp, err := client.Post(fmt.Sprintf("/domains/%s/dkim/refresh", domainID), nil)
	if err != nil {
		return fmt.Errorf("refresh dkim of %s: %w", domainID, err)
	}

	var d model.Domain
	if err := resp.Decode(&d); err != nil {
		return err
	}
	printDKIM(out, d.Name, d.DKIMStatus)
	return nil
}

// RefreshAllDKIM re-checks every domain.
func RefreshAllDKIM(client *Client, out io.Writer) error {
	resp, err := client.Post("/dkim/refresh", nil)
	if err != nil {
		return fmt.Errorf("refresh dkim: %w", err)
	}

	var result struct {
		Items []model.DKIMScan `json:"items"`
	}
	if err := resp.Decode(&result); err != nil {
		return err
	}
	for _, scan := range result.Items {
		printDKIM(out, scan.RecordName, scan.Status)
	}
	return nil
}

func printDKIM(out io.Writer, name string, status model.DKIMStatus) {
	fmt.Fprintf(out, "%s: %s (%s)\n", name, status, status.Description())
}
