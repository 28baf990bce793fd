package stations

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// Station is one monitoring site from the agency export.
type Station struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	River     string  `json:"river"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Catalog struct {
	mu       sync.RWMutex
	stations []Station
	byCode   map[string]Station
}

// LoadCatalog reads a semicolon-separated station export. Legacy exports are
// not UTF-8; the encoding parameter selects the decoder (utf-8, windows-1252,
// gbk). A missing file yields an empty catalog.
func LoadCatalog(path, encodingName string) (*Catalog, error) {
	catalog := &Catalog{byCode: make(map[string]Station)}
	if path == "" {
		return catalog, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return catalog, nil
		}
		return nil, err
	}
	defer file.Close()

	decoder, err := decoderFor(encodingName)
	if err != nil {
		return nil, err
	}
	var reader io.Reader = file
	if decoder != nil {
		reader = transform.NewReader(file, decoder)
	}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = ';'
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read station catalog: %w", err)
	}

	for i, record := range records {
		if i == 0 && isHeader(record) {
			continue
		}
		if len(record) < 2 {
			continue
		}
		station := Station{
			Code: strings.TrimSpace(record[0]),
			Name: strings.TrimSpace(record[1]),
		}
		if station.Code == "" {
			continue
		}
		if len(record) > 2 {
			station.River = strings.TrimSpace(record[2])
		}
		if len(record) > 4 {
			station.Latitude, _ = strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
			station.Longitude, _ = strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
		}
		catalog.stations = append(catalog.stations, station)
		catalog.byCode[station.Code] = station
	}

	sort.Slice(catalog.stations, func(i, j int) bool {
		return catalog.stations[i].Code < catalog.stations[j].Code
	})
	return catalog, nil
}

func (c *Catalog) List() []Station {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Station, len(c.stations))
	copy(result, c.stations)
	return result
}

func (c *Catalog) Lookup(code string) (Station, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	station, ok := c.byCode[code]
	return station, ok
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stations)
}

func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "latin1":
		return charmap.Windows1252.NewDecoder(), nil
	case "gbk":
		return simplifiedchinese.GBK.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported catalog encoding %q", name)
	}
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[0]))
	return first == "code" || first == "station_code"
}
