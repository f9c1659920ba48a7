// Command trackgen writes an az-transform track CSV: one (azimuth, zenith)
// control sample per second, following slow incommensurate sinusoids so the
// scan pattern never retraces itself within the track.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
)

var (
	out       = flag.String("out", "config/aztrack.csv", "Output CSV path")
	seconds   = flag.Int("seconds", 600, "Track duration in seconds")
	azAmp     = flag.Float64("az-amp", 180.0, "Azimuth sweep amplitude in degrees")
	zenAmp    = flag.Float64("zen-amp", 8.0, "Zenith sweep amplitude in degrees")
	azPeriod  = flag.Float64("az-period", 97.0, "Azimuth sweep period in seconds")
	zenPeriod = flag.Float64("zen-period", 41.0, "Zenith sweep period in seconds")
)

func main() {
	flag.Parse()

	if *seconds < 2 {
		log.Fatalf("need at least 2 seconds of track, got %d", *seconds)
	}
	if *azPeriod <= 0 || *zenPeriod <= 0 {
		log.Fatalf("sweep periods must be positive")
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("failed to create %s: %v", *out, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"azimuth_deg", "zenith_deg"}); err != nil {
		log.Fatalf("failed to write header: %v", err)
	}

	for s := 0; s <= *seconds; s++ {
		t := float64(s)
		azimuth := *azAmp * math.Sin(2*math.Pi*t / *azPeriod)
		zenith := *zenAmp * math.Sin(2*math.Pi*t / *zenPeriod)
		record := []string{
			strconv.FormatFloat(azimuth, 'f', 6, 64),
			strconv.FormatFloat(zenith, 'f', 6, 64),
		}
		if err := w.Write(record); err != nil {
			log.Fatalf("failed to write row %d: %v", s, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("failed to flush CSV: %v", err)
	}

	fmt.Printf("wrote %d control samples to %s\n", *seconds+1, *out)
}
