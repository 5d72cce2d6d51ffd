package importer

// amountMode determines which rows of an export are expenses.
type amountMode int

const (
	// amountPositive: one column, positive values are expenses (card statements, own exports).
	amountPositive amountMode = iota
	// amountSigned: one column, negative values are expenses (current account movements).
	amountSigned
	// amountSplit: separate debit and credit columns; only debits are expenses.
	amountSplit
)

// Profile describes the column layout of a supported CSV export. Header
// names are matched case-insensitively.
type Profile struct {
	Name        string
	DateCol     string
	DescCol     string
	CategoryCol string // optional
	AmountMode  amountMode
	AmountCol   string // amountPositive and amountSigned
	DebitCol    string // amountSplit
	CreditCol   string // amountSplit
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	if p.CategoryCol != "" {
		cols = append(cols, p.CategoryCol)
	}

	switch p.AmountMode {
	case amountPositive, amountSigned:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles is tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:        "spesapp",
		DateCol:     "data",
		DescCol:     "descrizione",
		CategoryCol: "categoria",
		AmountMode:  amountPositive,
		AmountCol:   "importo",
	},
	{
		Name:       "conto-addebiti",
		DateCol:    "data contabile",
		DescCol:    "descrizione",
		AmountMode: amountSplit,
		DebitCol:   "addebiti",
		CreditCol:  "accrediti",
	},
	{
		Name:       "conto-dare-avere",
		DateCol:    "data operazione",
		DescCol:    "descrizione",
		AmountMode: amountSplit,
		DebitCol:   "dare",
		CreditCol:  "avere",
	},
	{
		Name:       "conto-importo",
		DateCol:    "data operazione",
		DescCol:    "descrizione",
		AmountMode: amountSigned,
		AmountCol:  "importo",
	},
	{
		Name:       "carta",
		DateCol:    "data",
		DescCol:    "esercente",
		AmountMode: amountPositive,
		AmountCol:  "importo",
	},
}
