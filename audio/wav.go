package audio

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// ResampleQuality is the beep.Resample quality used for mismatched inputs
const ResampleQuality = 4

// Format returns the 16-bit stereo output format at rate
func Format(rate beep.SampleRate) beep.Format {
	return beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
}

// RenderWAV encodes duration of s into w as 16-bit stereo
func RenderWAV(w io.WriteSeeker, s beep.Streamer, rate beep.SampleRate, duration time.Duration) error {
	if err := wav.Encode(w, beep.Take(rate.N(duration), s), Format(rate)); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}

// RenderFile renders into a new file at path
func RenderFile(path string, s beep.Streamer, rate beep.SampleRate, duration time.Duration) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := RenderWAV(f, s, rate, duration); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Input is a decoded WAV file resampled to the output rate
type Input struct {
	beep.Streamer
	Format beep.Format

	decoder beep.StreamSeekCloser
}

// Close releases the decoder and its file
func (in *Input) Close() error {
	return in.decoder.Close()
}

// OpenWAV decodes path and resamples it to rate when the rates differ
// With loop set the file repeats forever
func OpenWAV(path string, rate beep.SampleRate, loop bool) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return DecodeWAV(f, rate, loop)
}

// DecodeWAV is OpenWAV over an already open reader; the decoder closes r if it is an io.Closer
func DecodeWAV(r io.Reader, rate beep.SampleRate, loop bool) (*Input, error) {
	dec, format, err := wav.Decode(r)
	if err != nil {
		if c, ok := r.(io.Closer); ok {
			c.Close()
		}
		return nil, fmt.Errorf("decode wav: %w", err)
	}

	var s beep.Streamer = dec
	if loop {
		s = beep.Loop(-1, dec)
	}
	if format.SampleRate != rate {
		s = beep.Resample(ResampleQuality, format.SampleRate, rate, s)
	}
	return &Input{Streamer: s, Format: format, decoder: dec}, nil
}
