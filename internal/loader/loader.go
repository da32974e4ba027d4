// Package loader reads the four CSV input tables into a models.Dataset.
// The tables are the system's only input: everything served is recomputed
// from them on startup or refresh.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	apperrors "kpi-master/internal/errors"
	"kpi-master/internal/models"
)

// Input table file names, resolved against the configured data directory.
const (
	HoldingsFile = "holdings.csv"
	TradesFile   = "trades.csv"
	ProductsFile = "products.csv"
	ClientsFile  = "clients.csv"
)

// Loader reads input tables from a directory.
type Loader struct {
	dir    string
	logger *zap.Logger
}

// New creates a Loader rooted at dir.
func New(dir string, logger *zap.Logger) *Loader {
	return &Loader{dir: dir, logger: logger}
}

// LoadAll reads all four tables. A missing or structurally malformed table
// is fatal; failures across tables are combined so the caller sees every
// broken table at once. Rows with unparseable numeric or date fields are
// skipped and reported as diagnostics rather than aborting the load.
func (l *Loader) LoadAll() (*models.Dataset, []models.Diagnostic, error) {
	var diags []models.Diagnostic
	var errs error

	holdings, hd, err := l.LoadHoldings()
	errs = multierr.Append(errs, err)
	diags = append(diags, hd...)

	trades, td, err := l.LoadTrades()
	errs = multierr.Append(errs, err)
	diags = append(diags, td...)

	products, pd, err := l.LoadProducts()
	errs = multierr.Append(errs, err)
	diags = append(diags, pd...)

	clients, cd, err := l.LoadClients()
	errs = multierr.Append(errs, err)
	diags = append(diags, cd...)

	if errs != nil {
		return nil, nil, errs
	}

	l.logger.Info("input tables loaded",
		zap.Int("holdings", len(holdings)),
		zap.Int("trades", len(trades)),
		zap.Int("products", len(products)),
		zap.Int("clients", len(clients)),
		zap.Int("skipped_rows", len(diags)))

	return &models.Dataset{
		Holdings: holdings,
		Trades:   trades,
		Products: products,
		Clients:  clients,
	}, diags, nil
}

// LoadHoldings reads the initial holdings table (client_id, fund_id, value).
func (l *Loader) LoadHoldings() ([]*models.Holding, []models.Diagnostic, error) {
	path := filepath.Join(l.dir, HoldingsFile)
	rows, idx, err := l.readTable(path, "holdings", []string{"client_id", "fund_id", "value"})
	if err != nil {
		return nil, nil, err
	}

	var holdings []*models.Holding
	var diags []models.Diagnostic
	for _, row := range rows {
		value, err := decimal.NewFromString(row[idx["value"]])
		if err != nil {
			diags = append(diags, models.Diagnostic{
				Kind:   "client",
				Entity: row[idx["client_id"]],
				Reason: models.ReasonBadValue,
				Detail: fmt.Sprintf("holdings value %q for fund %s", row[idx["value"]], row[idx["fund_id"]]),
			})
			continue
		}
		holdings = append(holdings, &models.Holding{
			ClientID: row[idx["client_id"]],
			FundID:   row[idx["fund_id"]],
			Value:    value,
		})
	}
	return holdings, diags, nil
}

// LoadTrades reads the trade log (client_id, fund_id, date, amount).
func (l *Loader) LoadTrades() ([]*models.Trade, []models.Diagnostic, error) {
	path := filepath.Join(l.dir, TradesFile)
	rows, idx, err := l.readTable(path, "trades", []string{"client_id", "fund_id", "date", "amount"})
	if err != nil {
		return nil, nil, err
	}

	var trades []*models.Trade
	var diags []models.Diagnostic
	for _, row := range rows {
		date, err := models.ParseDate(row[idx["date"]])
		if err != nil {
			diags = append(diags, models.Diagnostic{
				Kind:   "trade",
				Entity: row[idx["client_id"]],
				Reason: models.ReasonBadValue,
				Detail: fmt.Sprintf("trade date %q", row[idx["date"]]),
			})
			continue
		}
		amount, err := decimal.NewFromString(row[idx["amount"]])
		if err != nil {
			diags = append(diags, models.Diagnostic{
				Date:   date,
				Kind:   "trade",
				Entity: row[idx["client_id"]],
				Reason: models.ReasonBadValue,
				Detail: fmt.Sprintf("trade amount %q for fund %s", row[idx["amount"]], row[idx["fund_id"]]),
			})
			continue
		}
		trades = append(trades, &models.Trade{
			ClientID: row[idx["client_id"]],
			FundID:   row[idx["fund_id"]],
			Date:     date,
			Amount:   amount,
		})
	}
	return trades, diags, nil
}

// LoadProducts reads the fund metadata table
// (fund_id, name, fund_type, price, fee_rate, expense_ratio).
func (l *Loader) LoadProducts() (map[string]*models.ProductInfo, []models.Diagnostic, error) {
	path := filepath.Join(l.dir, ProductsFile)
	rows, idx, err := l.readTable(path, "products",
		[]string{"fund_id", "name", "fund_type", "price", "fee_rate", "expense_ratio"})
	if err != nil {
		return nil, nil, err
	}

	products := make(map[string]*models.ProductInfo, len(rows))
	var diags []models.Diagnostic
	for _, row := range rows {
		fundID := row[idx["fund_id"]]
		price, err1 := decimal.NewFromString(row[idx["price"]])
		feeRate, err2 := decimal.NewFromString(row[idx["fee_rate"]])
		expense, err3 := decimal.NewFromString(row[idx["expense_ratio"]])
		if err := multierr.Combine(err1, err2, err3); err != nil {
			diags = append(diags, models.Diagnostic{
				Kind:   "fund",
				Entity: fundID,
				Reason: models.ReasonBadValue,
				Detail: err.Error(),
			})
			continue
		}
		if _, dup := products[fundID]; dup {
			l.logger.Debug("duplicate product row, keeping last", zap.String("fund", fundID))
		}
		products[fundID] = &models.ProductInfo{
			FundID:       fundID,
			Name:         row[idx["name"]],
			FundType:     row[idx["fund_type"]],
			Price:        price,
			FeeRate:      feeRate,
			ExpenseRatio: expense,
		}
	}
	return products, diags, nil
}

// LoadClients reads the client roster (client_id, sales_person, province).
func (l *Loader) LoadClients() (map[string]*models.ClientInfo, []models.Diagnostic, error) {
	path := filepath.Join(l.dir, ClientsFile)
	rows, idx, err := l.readTable(path, "clients", []string{"client_id", "sales_person", "province"})
	if err != nil {
		return nil, nil, err
	}

	clients := make(map[string]*models.ClientInfo, len(rows))
	for _, row := range rows {
		clientID := row[idx["client_id"]]
		if _, dup := clients[clientID]; dup {
			l.logger.Debug("duplicate roster row, keeping last", zap.String("client", clientID))
		}
		clients[clientID] = &models.ClientInfo{
			ClientID:    clientID,
			Salesperson: row[idx["sales_person"]],
			Province:    row[idx["province"]],
		}
	}
	return clients, nil, nil
}

// readTable opens a CSV file, validates its header against the required
// column names (case-insensitive, order-free) and returns the data rows
// with a column→index map.
func (l *Loader) readTable(path, table string, columns []string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &apperrors.ErrInputLoad{Table: table, Path: path, Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, &apperrors.ErrInputLoad{Table: table, Path: path, Err: fmt.Errorf("read header: %w", err)}
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range columns {
		if _, ok := idx[col]; !ok {
			return nil, nil, &apperrors.ErrInputLoad{Table: table, Path: path, Err: fmt.Errorf("missing column %q", col)}
		}
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, &apperrors.ErrInputLoad{Table: table, Path: path, Err: err}
		}
		rows = append(rows, row)
	}
	return rows, idx, nil
}
