package sheetsclient

import (
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"
)

// WriteTab replaces the contents of the tab named tabTitle with rows, starting at A1.
// The tab is created if the spreadsheet does not have it yet.
func (c *Client) WriteTab(spreadsheetID, tabTitle string, rows [][]interface{}) error {
	exists, err := c.HasTab(spreadsheetID, tabTitle)
	if err != nil {
		return err
	}

	if !exists {
		if _, err := c.CreateSheet(spreadsheetID, tabTitle); err != nil {
			return fmt.Errorf("failed to create tab: %w", err)
		}
	} else {
		_, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, tabRange(tabTitle, ""), &sheets.ClearValuesRequest{}).Do()
		if err != nil {
			return fmt.Errorf("failed to clear tab: %w", err)
		}
	}

	_, err = c.service.Spreadsheets.Values.Update(
		spreadsheetID,
		tabRange(tabTitle, "A1"),
		&sheets.ValueRange{Values: rows},
	).ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("failed to write tab: %w", err)
	}

	return nil
}

// HasTab reports whether the spreadsheet has a tab titled tabTitle
func (c *Client) HasTab(spreadsheetID, tabTitle string) (bool, error) {
	spreadsheet, err := c.service.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Do()
	if err != nil {
		return false, fmt.Errorf("failed to get spreadsheet metadata: %w", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == tabTitle {
			return true, nil
		}
	}
	return false, nil
}

// tabRange builds an A1 range on a tab, quoting the title since it may contain spaces
func tabRange(tabTitle, cells string) string {
	quoted := "'" + strings.ReplaceAll(tabTitle, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}
