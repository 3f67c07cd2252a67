package domain

// Report describes a dashboard report.
type Report struct {
	ID          string `json:"id"`
	Title       string `json:"titulo"`
	Description string `json:"descricao"`
}

// ReportResult is a rendered report table.
type ReportResult struct {
	Type    string   `json:"tipo"`
	Header  []string `json:"cabecalho"`
	Rows    [][]any  `json:"dados"`
	Summary string   `json:"resumo"`
}

const ReportTypeTable = "tabela"
