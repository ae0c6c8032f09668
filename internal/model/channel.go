package model

type Channel struct {
	Key            string `json:"key" mapstructure:"key"`
	SpreadsheetID  string `json:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	CompletedRange string `json:"completed_range" mapstructure:"completed_range"`
	AbandonedRange string `json:"abandoned_range" mapstructure:"abandoned_range"`
}
