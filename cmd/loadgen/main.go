package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/Akhileshait/tradenet/internal/auth"
	"github.com/Akhileshait/tradenet/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Order is the body posted to the intake gateway.
type Order struct {
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Type     string `json:"type"`
	Quantity string `json:"quantity"`
}

type submission struct {
	userID string
	order  Order
}

var symbols = []string{"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT"}

// generateOrders creates count orders spread across users distinct users.
func generateOrders(count, users int) []submission {
	out := make([]submission, count)
	for i := 0; i < count; i++ {
		side := "SELL"
		if rand.Float64() < 0.5 {
			side = "BUY"
		}

		// 0.001 to 0.100 in steps of 0.001
		qty := float64(rand.Intn(100)+1) / 1000

		out[i] = submission{
			userID: fmt.Sprintf("%d", rand.Intn(users)+1),
			order: Order{
				Symbol:   symbols[rand.Intn(len(symbols))],
				Side:     side,
				Type:     "MARKET",
				Quantity: fmt.Sprintf("%.3f", qty),
			},
		}
	}
	return out
}

func main() {
	var (
		url    = flag.String("url", "http://localhost:3000/orders", "Intake gateway order endpoint")
		secret = flag.String("secret", "dev-secret", "JWT secret shared with the gateway")
		count  = flag.Int("count", 100, "Number of orders to submit")
		users  = flag.Int("users", 5, "Number of distinct user ids")
		delay  = flag.Duration("delay", 100*time.Millisecond, "Delay between orders")
	)
	flag.Parse()

	log, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	tokens := auth.NewTokens(*secret)
	client := &http.Client{Timeout: 10 * time.Second}

	orders := generateOrders(*count, *users)
	log.Info("Submitting orders",
		logger.Field{Key: "count", Value: len(orders)},
		logger.Field{Key: "url", Value: *url},
	)

	statuses := make(map[int]int)
	for i, s := range orders {
		status, err := submit(client, tokens, *url, s)
		if err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "submit_order"}, logger.Field{Key: "index", Value: i})
			statuses[0]++
		} else {
			statuses[status]++
		}

		if (i+1)%100 == 0 || i == len(orders)-1 {
			log.Info("Progress",
				logger.Field{Key: "sent", Value: i + 1},
				logger.Field{Key: "userId", Value: s.userID},
				logger.Field{Key: "symbol", Value: s.order.Symbol},
				logger.Field{Key: "side", Value: s.order.Side},
				logger.Field{Key: "quantity", Value: s.order.Quantity},
			)
		}

		if i < len(orders)-1 {
			time.Sleep(*delay)
		}
	}

	for status, n := range statuses {
		log.Info("Summary", logger.Field{Key: "httpStatus", Value: status}, logger.Field{Key: "orders", Value: n})
	}
}

func submit(client *http.Client, tokens *auth.Tokens, url string, s submission) (int, error) {
	token, err := tokens.Issue(s.userID, time.Hour)
	if err != nil {
		return 0, err
	}

	body, err := json.Marshal(s.order)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
