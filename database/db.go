package database

import (
	"database/sql"
	"log"
	"sync"

	"github.com/pkg/errors"

	"github.com/freightpay/freightpay/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error: %v", err)
		return nil, errors.Wrap(err, "pinging database")
	}
	err = Migrate(db)
	if err != nil {
		return nil, errors.Wrap(err, "running migrations")
	}
	return db, nil
}

// Migrate creates the engine's tables if they do not exist. The allocation
// engine owns payment_allocations and the status column of payment_requests;
// the remaining tables are intake surfaces for the upstream workflows.
func Migrate(db *sql.DB) error {
	err := createBeneficiaryTable(db)
	if err != nil {
		return err
	}
	err = createPaymentRequestTable(db)
	if err != nil {
		return err
	}
	err = createBankTransactionTable(db)
	if err != nil {
		return err
	}
	err = createPaymentAllocationTable(db)
	if err != nil {
		return err
	}
	return nil
}

func createBeneficiaryTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS beneficiaries (
			id SERIAL PRIMARY KEY,
			beneficiary_id TEXT NOT NULL UNIQUE,
			tenant_id TEXT NOT NULL,
			name TEXT NOT NULL,
			bank_name TEXT,
			account_number TEXT NOT NULL,
			ifsc_code TEXT,
			phone_number TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			meta_data JSONB
		)
	`)
	if err != nil {
		log.Printf("Error creating beneficiaries table: %v", err)
	}
	return err
}

func createPaymentRequestTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS payment_requests (
			id SERIAL PRIMARY KEY,
			request_id TEXT NOT NULL UNIQUE,
			tenant_id TEXT NOT NULL,
			sales_order_id TEXT,
			vehicle_id TEXT,
			beneficiary_id TEXT REFERENCES beneficiaries(beneficiary_id),
			transaction_type TEXT NOT NULL,
			requested_amount NUMERIC(20,4) NOT NULL CHECK (requested_amount > 0),
			status TEXT NOT NULL CHECK (status IN ('PENDING', 'COMPLETED')),
			notes TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			meta_data JSONB
		)
	`)
	if err != nil {
		log.Printf("Error creating payment_requests table: %v", err)
	}
	return err
}

func createBankTransactionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bank_transactions (
			id SERIAL PRIMARY KEY,
			transaction_id TEXT NOT NULL UNIQUE,
			tenant_id TEXT NOT NULL,
			beneficiary_id TEXT NOT NULL REFERENCES beneficiaries(beneficiary_id),
			total_paid_amount NUMERIC(20,4) NOT NULL CHECK (total_paid_amount > 0),
			transaction_code TEXT NOT NULL,
			payment_document_id TEXT,
			payment_date TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			meta_data JSONB,
			UNIQUE (tenant_id, transaction_code)
		)
	`)
	if err != nil {
		log.Printf("Error creating bank_transactions table: %v", err)
	}
	return err
}

func createPaymentAllocationTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS payment_allocations (
			id SERIAL PRIMARY KEY,
			allocation_id TEXT NOT NULL UNIQUE,
			tenant_id TEXT NOT NULL,
			request_id TEXT NOT NULL REFERENCES payment_requests(request_id),
			transaction_id TEXT NOT NULL REFERENCES bank_transactions(transaction_id),
			allocated_amount NUMERIC(20,4) NOT NULL CHECK (allocated_amount > 0),
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating payment_allocations table: %v", err)
	}
	return err
}
