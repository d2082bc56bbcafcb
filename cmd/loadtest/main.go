// Command loadtest runs simulated candidates against the interview gateway.
// Each virtual candidate completes a full interview over the websocket:
// start, synthetic audio per question, the occasional skip, end.
package main

import (
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	gateway := flag.String("gateway", "ws://localhost:8000/ws/interview", "gateway WebSocket URL")
	concurrency := flag.Int("concurrency", 10, "number of concurrent candidates")
	interviews := flag.Int("interviews", 1, "interviews per candidate")
	questions := flag.Int("questions", 5, "questions per interview")
	interviewType := flag.String("type", "balanced-mixed", "interview type")
	skipEvery := flag.Int("skip-every", 4, "skip every Nth question (0 disables)")
	flag.Parse()

	fmt.Printf("Load test: %d concurrent candidates, %d interviews each\n", *concurrency, *interviews)
	fmt.Printf("Gateway: %s | Type: %s | Questions: %d\n\n", *gateway, *interviewType, *questions)

	var mu sync.Mutex
	var results []interviewResult
	var wg sync.WaitGroup

	for range *concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for range *interviews {
				r := runInterview(*gateway, *interviewType, *questions, *skipEvery)
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	printSummary(results)
}

type interviewResult struct {
	success    bool
	answered   int
	turnTimeMs []float64
	totalMs    float64
	err        string
}

// eventFrame is the envelope the gateway emits for every event.
type eventFrame struct {
	Type string `json:"type"`
	Data struct {
		Message           string  `json:"message"`
		Recording         *bool   `json:"recording"`
		Number            int     `json:"number"`
		Total             int     `json:"total"`
		Score             float64 `json:"score"`
		QuestionsAnswered int     `json:"questions_answered"`
	} `json:"data"`
}

func runInterview(gateway, interviewType string, questions, skipEvery int) interviewResult {
	conn, _, err := websocket.DefaultDialer.Dial(gateway, nil)
	if err != nil {
		return interviewResult{err: fmt.Sprintf("dial: %v", err)}
	}
	defer conn.Close()

	start, _ := json.Marshal(map[string]any{
		"type":           "start",
		"interview_type": interviewType,
		"num_questions":  questions,
		"profile": map[string]any{
			"technical_skills": []string{"Python", "SQL", "Go"},
			"projects":         []map[string]string{{"name": "inventory tracker"}},
		},
	})
	if err = conn.WriteMessage(websocket.TextMessage, start); err != nil {
		return interviewResult{err: fmt.Sprintf("send start: %v", err)}
	}

	res := interviewResult{}
	began := time.Now()
	var questionAt time.Time
	questionNum := 0

	conn.SetReadDeadline(time.Now().Add(2 * time.Minute))
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			res.err = fmt.Sprintf("read: %v", err)
			return res
		}
		if msgType != websocket.TextMessage {
			continue // question audio
		}

		var ev eventFrame
		if err = json.Unmarshal(data, &ev); err != nil {
			continue
		}

		switch ev.Type {
		case "question":
			questionNum = ev.Data.Number
			questionAt = time.Now()
		case "status":
			if ev.Data.Recording == nil || !*ev.Data.Recording {
				continue
			}
			if skipEvery > 0 && questionNum%skipEvery == 0 {
				send(conn, "skip_question")
				continue
			}
			if err = streamAnswer(conn); err != nil {
				res.err = fmt.Sprintf("send audio: %v", err)
				return res
			}
		case "feedback":
			res.answered++
			res.turnTimeMs = append(res.turnTimeMs, float64(time.Since(questionAt).Milliseconds()))
		case "complete":
			res.success = true
			res.totalMs = float64(time.Since(began).Milliseconds())
			return res
		case "error":
			// retry path: skip the question that failed
			send(conn, "skip_question")
		}
	}
}

// streamAnswer sends ~2s of synthetic speech in 20ms chunks, then stops.
func streamAnswer(conn *websocket.Conn) error {
	audio := syntheticAudio(2 * time.Second)
	chunkSize := 640 // 320 samples * 2 bytes = 20ms at 16kHz

	for i := 0; i < len(audio); i += chunkSize {
		end := min(i+chunkSize, len(audio))
		if err := conn.WriteMessage(websocket.BinaryMessage, audio[i:end]); err != nil {
			return err
		}
	}
	return send(conn, "stop_recording")
}

func send(conn *websocket.Conn, cmdType string) error {
	msg, _ := json.Marshal(map[string]string{"type": cmdType})
	return conn.WriteMessage(websocket.TextMessage, msg)
}

func syntheticAudio(dur time.Duration) []byte {
	sampleRate := 16000
	numSamples := int(dur.Seconds()) * sampleRate
	buf := make([]byte, numSamples*2)

	for i := range numSamples {
		t := float64(i) / float64(sampleRate)
		sample := math.Sin(2*math.Pi*440*t)*0.3 + (rand.Float64()-0.5)*0.05
		val := int16(sample * math.MaxInt16)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(val))
	}
	return buf
}

func printSummary(results []interviewResult) {
	var succeeded, failed, answered int
	var turns, totals []float64

	for _, r := range results {
		if !r.success {
			failed++
			continue
		}
		succeeded++
		answered += r.answered
		turns = append(turns, r.turnTimeMs...)
		totals = append(totals, r.totalMs)
	}

	fmt.Printf("\n=== Load Test Results ===\n")
	fmt.Printf("Interviews completed: %d\n", succeeded)
	fmt.Printf("Interviews failed:    %d\n", failed)
	fmt.Printf("Answers scored:       %d\n", answered)

	if len(turns) == 0 {
		fmt.Println("No scored answers to report latency")
		return
	}

	fmt.Printf("\n%-10s %8s %8s %8s\n", "Metric", "p50", "p95", "p99")
	fmt.Printf("%-10s %7.0fms %7.0fms %7.0fms\n", "Turn", percentile(turns, 50), percentile(turns, 95), percentile(turns, 99))
	fmt.Printf("%-10s %7.0fms %7.0fms %7.0fms\n", "Interview", percentile(totals, 50), percentile(totals, 95), percentile(totals, 99))
}

func percentile(data []float64, pct float64) float64 {
	sort.Float64s(data)
	idx := int(math.Ceil(pct/100*float64(len(data)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(data) {
		idx = len(data) - 1
	}
	return data[idx]
}
