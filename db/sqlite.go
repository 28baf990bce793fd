package db

import (
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"

	"aquaquant/predictor"
)

var database *sql.DB

// InitDB initializes the SQLite database
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        station VARCHAR(20),
        temperature REAL NOT NULL,
        date TEXT NOT NULL,
        nitrate REAL NOT NULL,
        sulphate REAL NOT NULL,
        ph REAL NOT NULL,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created_at
        ON predictions (created_at);
    `

	_, err = database.Exec(query)
	return err
}

// Close closes the database handle
func Close() error {
	if database == nil {
		return nil
	}
	return database.Close()
}

// SavePrediction saves a prediction to the history table
func SavePrediction(p predictor.Prediction) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO predictions (station, temperature, date, nitrate, sulphate, ph, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Station, p.Temperature, p.Date, p.Nitrate, p.Sulphate, p.PH, p.CreatedAt)
	return err
}

// QueryPredictions returns the most recent predictions
func QueryPredictions(limit int) ([]predictor.Prediction, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT station, temperature, date, nitrate, sulphate, ph, created_at
        FROM predictions
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var predictions []predictor.Prediction
	for rows.Next() {
		var p predictor.Prediction
		var station sql.NullString
		if err := rows.Scan(&station, &p.Temperature, &p.Date, &p.Nitrate, &p.Sulphate, &p.PH, &p.CreatedAt); err != nil {
			return nil, err
		}
		if station.Valid {
			p.Station = station.String
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}
