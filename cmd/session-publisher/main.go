// session-publisher simulates game-session processes: it steps a handful of
// snake games and publishes a snapshot per session per tick to the topic the
// backend ingests from. It stands in for the real game servers.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/serpent-showdown/internal/domain"
)

var sessionNames = []string{
	"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta", "Eta", "Theta",
	"Iota", "Kappa", "Lambda", "Sigma", "Omega", "Nova", "Orion", "Vega",
}

func sessionUsername(idx int) string {
	name := sessionNames[idx%len(sessionNames)]
	if idx >= len(sessionNames) {
		return fmt.Sprintf("AIPlayer_%s%d", name, idx/len(sessionNames)+1)
	}
	return "AIPlayer_" + name
}

// session is one simulated snake game.
type session struct {
	player domain.LivePlayer
	grid   int
	rng    *rand.Rand
}

func newSession(idx, grid int, rng *rand.Rand) *session {
	x := rng.Intn(grid-6) + 3
	y := rng.Intn(grid-6) + 3
	mode := domain.ModeWalls
	if idx%2 == 1 {
		mode = domain.ModePassThrough
	}
	return &session{
		player: domain.LivePlayer{
			ID:        fmt.Sprintf("live%d", idx+1),
			Username:  sessionUsername(idx),
			Mode:      mode,
			Snake:     []domain.Position{{X: x, Y: y}, {X: x - 1, Y: y}, {X: x - 2, Y: y}},
			Food:      domain.Position{X: rng.Intn(grid), Y: rng.Intn(grid)},
			Direction: domain.DirectionRight,
			Viewers:   rng.Intn(50),
		},
		grid: grid,
		rng:  rng,
	}
}

var headings = map[domain.Direction]domain.Position{
	domain.DirectionUp:    {X: 0, Y: -1},
	domain.DirectionDown:  {X: 0, Y: 1},
	domain.DirectionLeft:  {X: -1, Y: 0},
	domain.DirectionRight: {X: 1, Y: 0},
}

// perpendicular turns per heading; reversing into the body is never legal.
var turns = map[domain.Direction][2]domain.Direction{
	domain.DirectionUp:    {domain.DirectionLeft, domain.DirectionRight},
	domain.DirectionDown:  {domain.DirectionLeft, domain.DirectionRight},
	domain.DirectionLeft:  {domain.DirectionUp, domain.DirectionDown},
	domain.DirectionRight: {domain.DirectionUp, domain.DirectionDown},
}

// step advances the game one tick and returns the updated snapshot.
func (s *session) step() *domain.LivePlayer {
	p := &s.player

	// Occasional random turn keeps the replay interesting.
	if s.rng.Intn(10) == 0 {
		p.Direction = turns[p.Direction][s.rng.Intn(2)]
	}

	head := p.Snake[0]
	delta := headings[p.Direction]
	next := domain.Position{X: head.X + delta.X, Y: head.Y + delta.Y}

	outOfBounds := next.X < 0 || next.X >= s.grid || next.Y < 0 || next.Y >= s.grid
	if outOfBounds {
		if p.Mode == domain.ModePassThrough {
			next.X = (next.X + s.grid) % s.grid
			next.Y = (next.Y + s.grid) % s.grid
		} else {
			// Walls mode: the simulator turns away instead of dying.
			for _, d := range turns[p.Direction] {
				delta = headings[d]
				candidate := domain.Position{X: head.X + delta.X, Y: head.Y + delta.Y}
				if candidate.X >= 0 && candidate.X < s.grid && candidate.Y >= 0 && candidate.Y < s.grid {
					p.Direction = d
					next = candidate
					break
				}
			}
		}
	}

	if next == p.Food {
		p.Score += 10
		p.Snake = append([]domain.Position{next}, p.Snake...)
		p.Food = domain.Position{X: s.rng.Intn(s.grid), Y: s.rng.Intn(s.grid)}
	} else {
		p.Snake = append([]domain.Position{next}, p.Snake[:len(p.Snake)-1]...)
	}

	// Viewer counts drift instead of jumping.
	p.Viewers += s.rng.Intn(5) - 2
	if p.Viewers < 0 {
		p.Viewers = 0
	}

	return p
}

func main() {
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "live-snapshots", "Kafka topic")
	sessions := flag.Int("sessions", 5, "Number of simulated game sessions")
	grid := flag.Int("grid", 20, "Grid size (cells per side)")
	tick := flag.Duration("tick", 500*time.Millisecond, "Game tick interval")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	flag.Parse()

	brokerList := strings.Split(*brokers, ",")

	fmt.Println("Serpent Showdown session publisher")
	fmt.Printf("  Brokers:   %s\n", *brokers)
	fmt.Printf("  Topic:     %s\n", *topic)
	fmt.Printf("  Sessions:  %d\n", *sessions)
	fmt.Printf("  Tick:      %s\n", *tick)
	fmt.Println()

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokerList, config)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}
	defer producer.Close()

	var successCount, errorCount int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("Producer error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})

	publish := func(p *domain.LivePlayer) {
		data, err := json.Marshal(p)
		if err != nil {
			log.Printf("Failed to marshal snapshot: %v", err)
			return
		}

		msg := &sarama.ProducerMessage{
			Topic: *topic,
			Key:   sarama.StringEncoder(p.ID),
			Value: sarama.ByteEncoder(data),
		}

		select {
		case producer.Input() <- msg:
		case <-done:
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	games := make([]*session, *sessions)
	for i := range games {
		games[i] = newSession(i, *grid, rng)
	}

	ticker := time.NewTicker(*tick)
	defer ticker.Stop()

	statsTicker := time.NewTicker(10 * time.Second)
	defer statsTicker.Stop()

	var endTime time.Time
	if *duration > 0 {
		endTime = time.Now().Add(*duration)
	}

	shutdown := func() {
		close(done)
		producer.AsyncClose()
		wg.Wait()
		fmt.Printf("\nDone. Sent: %d, Errors: %d\n",
			atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
	}

	fmt.Println("Publishing snapshots. Press Ctrl+C to stop.")

	for {
		select {
		case <-sigChan:
			fmt.Println("\nShutting down...")
			shutdown()
			return

		case <-ticker.C:
			if *duration > 0 && time.Now().After(endTime) {
				fmt.Println("\nDuration reached, shutting down...")
				shutdown()
				return
			}

			for _, g := range games {
				publish(g.step())
			}

		case <-statsTicker.C:
			log.Printf("Sent: %d | Errors: %d",
				atomic.LoadInt64(&successCount),
				atomic.LoadInt64(&errorCount),
			)
		}
	}
}
