package model

// QueryItem is one scanned query file and the tables it references.
type QueryItem struct {
	SourceName string   `json:"sourceName"`
	Tables     []string `json:"tables"`
}

// NewQueryItem creates a QueryItem, normalising a nil table list to empty.
func NewQueryItem(sourceName string, tables []string) QueryItem {
	if tables == nil {
		tables = []string{}
	}
	return QueryItem{
		SourceName: sourceName,
		Tables:     tables,
	}
}

// References returns true if the item references the given table.
func (q QueryItem) References(table string) bool {
	for _, t := range q.Tables {
		if t == table {
			return true
		}
	}
	return false
}
