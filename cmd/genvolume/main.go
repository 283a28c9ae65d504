// Command genvolume writes synthetic radar volume fixtures for the HSDA
// service. Each volume holds a single convective cell whose core exceeds the
// hail-candidate reflectivity, so the engine has something to classify.
//
// Usage:
//
//	go run ./cmd/genvolume \
//	  -out data/mock/volume_synthetic.json \
//	  -rays 12 -gates 40 -seed 7
//
// With -brokers set, the encoded volume is also produced to -topic.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/storm-data-hsda/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	hailCode = 9
	rainCode = 2
	noEcho   = 0
)

type options struct {
	station     string
	scanTime    time.Time
	rays, gates int
	seed        uint64
	peakDBZ     float64
	missingRate float64
	withProfile bool
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the volume fixture")
	compress := flag.Bool("zstd", false, "zstd-compress the fixture")
	station := flag.String("station", "KTLX", "radar station identifier")
	scan := flag.String("scan-time", "2024-04-26T22:10:35Z", "scan time (RFC3339)")
	rays := flag.Int("rays", 8, "number of elevation rays")
	gates := flag.Int("gates", 24, "number of range gates")
	seed := flag.Uint64("seed", 1, "random seed")
	peak := flag.Float64("peak-dbz", 68, "reflectivity at the cell core")
	missing := flag.Float64("missing-rate", 0.02, "fraction of samples written as the fill value")
	profile := flag.Bool("profile", false, "ship a sounding profile instead of precomputed thresholds")
	brokers := flag.String("brokers", "", "comma-separated Kafka brokers; when set the volume is produced")
	topic := flag.String("topic", "radar-volumes", "Kafka topic to produce to")
	flag.Parse()

	if *out == "" && *brokers == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out or -brokers")
	}
	scanTime, err := time.Parse(time.RFC3339, *scan)
	if err != nil {
		return fmt.Errorf("parse -scan-time: %w", err)
	}

	msg := generate(options{
		station:     *station,
		scanTime:    scanTime.UTC(),
		rays:        *rays,
		gates:       *gates,
		seed:        *seed,
		peakDBZ:     *peak,
		missingRate: *missing,
		withProfile: *profile,
	})

	value, headers, err := domain.EncodeVolumeMessage(msg, *compress)
	if err != nil {
		return err
	}

	if *out != "" {
		if err := writeFixture(*out, msg, value, *compress); err != nil {
			return fmt.Errorf("writing fixture: %w", err)
		}
		log.Printf("wrote fixture: %s", *out)
	}

	if *brokers != "" {
		if err := produce(strings.Split(*brokers, ","), *topic, msg.VolumeID, value, headers); err != nil {
			return fmt.Errorf("producing volume: %w", err)
		}
		log.Printf("produced %s to %s", msg.VolumeID, *topic)
	}

	printStats(msg)
	return nil
}

func generate(o options) domain.VolumeMessage {
	rng := rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15))
	n := o.rays * o.gates

	elev := make([]float64, o.rays)
	for i := range elev {
		elev[i] = 0.5 + float64(i)*19.0/math.Max(1, float64(o.rays-1))
	}
	rng0, rngStep := 10.0, 140.0/math.Max(1, float64(o.gates-1))
	ranges := make([]float64, o.gates)
	for j := range ranges {
		ranges[j] = rng0 + float64(j)*rngStep
	}

	// Cell core placement in index space.
	cr := float64(o.rays) * (0.3 + 0.2*rng.Float64())
	cg := float64(o.gates) * (0.4 + 0.2*rng.Float64())
	sr := math.Max(1, float64(o.rays)/3)
	sg := math.Max(1.5, float64(o.gates)/6)

	zh := make([]float64, n)
	zdr := make([]float64, n)
	rhv := make([]float64, n)
	phi := make([]float64, n)
	snr := make([]float64, n)
	cbb := make([]float64, n)
	class := make([]int, n)

	for r := range o.rays {
		for g := range o.gates {
			i := r*o.gates + g
			dr, dg := (float64(r)-cr)/sr, (float64(g)-cg)/sg
			w := math.Exp(-0.5 * (dr*dr + dg*dg))

			zh[i] = round1(5 + (o.peakDBZ-5)*w + rng.NormFloat64())
			// Hail cores show low ZDR and depressed correlation.
			rainZDR := 0.05 * math.Max(zh[i]-20, 0)
			zdr[i] = round2(rainZDR*(1-w) + (0.2+0.4*rng.Float64())*w)
			rhv[i] = round3(math.Min(0.995, 0.985-0.11*w*w+0.005*rng.NormFloat64()))
			phi[i] = round1(float64(g) * 1.5 * w)
			snr[i] = round1(40 - 0.15*ranges[g] + 10*w)
			if r == 0 && g < o.gates/8 {
				cbb[i] = 0.3
			}

			switch {
			case zh[i] >= 50:
				class[i] = hailCode
			case zh[i] >= 20:
				class[i] = rainCode
			default:
				class[i] = noEcho
			}
		}
	}

	fill := domain.DefaultFillValue
	for _, grid := range [][]float64{zh, zdr, rhv} {
		for i := range grid {
			if rng.Float64() < o.missingRate {
				grid[i] = fill
			}
		}
	}

	msg := domain.VolumeMessage{
		VolumeID:  fmt.Sprintf("%s-%s", o.station, o.scanTime.Format("20060102-150405")),
		Station:   o.station,
		ScanTime:  o.scanTime,
		Shape:     []int{o.rays, o.gates},
		FillValue: &fill,
		Fields: map[string][]float64{
			string(domain.FieldReflectivity):             zh,
			string(domain.FieldDifferentialReflectivity): zdr,
			string(domain.FieldCorrelationCoefficient):   rhv,
			string(domain.FieldDifferentialPhase):        phi,
			string(domain.FieldSNR):                      snr,
			string(domain.FieldCBB):                      cbb,
		},
		Classification: class,
		Geometry: &domain.Geometry{
			RangeKm:         ranges,
			ElevationDeg:    elev,
			RadarAltitudeKm: 0.37,
		},
	}
	if o.withProfile {
		msg.Profile = standardProfile()
	} else {
		msg.Sounding = &domain.SoundingThresholds{WBTMinus25C: 7.4, WBT0C: 3.9}
	}
	return msg
}

// standardProfile is a warm-season sounding with a 6.5 K/km lapse rate.
func standardProfile() *domain.Profile {
	p := &domain.Profile{}
	for h := 0.0; h <= 12000; h += 500 {
		p.HeightM = append(p.HeightM, h)
		p.TemperatureC = append(p.TemperatureC, round1(26-0.0065*h))
		p.RHPct = append(p.RHPct, math.Max(20, 75-0.004*h))
	}
	return p
}

func writeFixture(path string, msg domain.VolumeMessage, value []byte, compressed bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if compressed {
		return os.WriteFile(path, value, 0o600)
	}
	data, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func produce(brokers []string, topic, key string, value []byte, headers map[string]string) error {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafkago.RequireAll,
	}
	defer w.Close()

	msg := kafkago.Message{Key: []byte(key), Value: value}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, kafkago.Header{Key: k, Value: []byte(v)})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return w.WriteMessages(ctx, msg)
}

func printStats(msg domain.VolumeMessage) {
	counts := map[int]int{}
	for _, c := range msg.Classification {
		counts[c]++
	}
	var missing int
	for _, grid := range msg.Fields {
		for _, v := range grid {
			if v == *msg.FillValue {
				missing++
			}
		}
	}
	fmt.Println("\n=== Volume stats ===")
	fmt.Printf("ID: %s\n", msg.VolumeID)
	fmt.Printf("Shape: %v (%d voxels)\n", msg.Shape, len(msg.Classification))
	fmt.Printf("Hail candidates (code %d): %d\n", hailCode, counts[hailCode])
	fmt.Printf("Rain (code %d): %d, no echo: %d\n", rainCode, counts[rainCode], counts[noEcho])
	fmt.Printf("Fill samples: %d\n", missing)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
