package seed

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

// SampleSource отдает сырые записи сэмплов по видам сущностей.
// Пустой результат означает "данных нет" — любая ошибка источника
// деградирует до фолбэка, а не роняет засев.
type SampleSource interface {
	TenderSamples(ctx context.Context) []map[string]interface{}
	ProductSamples(ctx context.Context) []map[string]interface{}
	OrderSamples(ctx context.Context) []map[string]interface{}
}

type SampleClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewSampleClient(baseURL string) *SampleClient {
	return &SampleClient{
		BaseURL: baseURL,
		HTTP:    http.DefaultClient,
	}
}

func (c *SampleClient) TenderSamples(ctx context.Context) []map[string]interface{} {
	return c.fetch(ctx, "/webhook/tender-sample")
}

func (c *SampleClient) ProductSamples(ctx context.Context) []map[string]interface{} {
	return c.fetch(ctx, "/webhook/product-sample")
}

func (c *SampleClient) OrderSamples(ctx context.Context) []map[string]interface{} {
	return c.fetch(ctx, "/webhook/order-sample")
}

// fetch возвращает nil при сетевой ошибке, не-2xx статусе или битом JSON
func (c *SampleClient) fetch(ctx context.Context, path string) []map[string]interface{} {
	url := c.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("Error fetching data from %s: %v", url, err)
		return nil
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Printf("Error fetching data from %s: %v", url, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Error fetching data from %s: status %d", url, resp.StatusCode)
		return nil
	}

	var records []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		log.Printf("Error fetching data from %s: %v", url, err)
		return nil
	}
	return records
}

// Поля внешних записей слабо типизированы: числа приходят и строками,
// и числами, поэтому читаем их с поштучным приведением.

func stringField(rec map[string]interface{}, key string) string {
	switch v := rec[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func floatField(rec map[string]interface{}, key string) (float64, bool) {
	switch v := rec[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

func intField(rec map[string]interface{}, key string) (int, bool) {
	f, ok := floatField(rec, key)
	if !ok {
		return 0, false
	}
	return int(f), true
}
