package source

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// frameReader is implemented by all format-specific decoders. Values are
// interleaved by channel and scaled to [-1, 1].
type frameReader interface {
	// ReadFrames fills dst with whole frames and returns the number of
	// values written, or io.EOF once the stream is exhausted.
	ReadFrames(dst []float64) (int, error)
	Rewind() error
	SampleRate() float64
	Channels() int
	Close() error
}

// openFrameReader opens path with the decoder for format. rawRate is the
// sample rate of headerless IQ formats, which carry none of their own.
func openFrameReader(path, format string, rawRate float64) (frameReader, error) {
	if isRaw(format) && rawRate <= 0 {
		return nil, fmt.Errorf("%s recordings need an explicit sample rate", format)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var r frameReader
	switch format {
	case "mp3":
		r, err = newMP3Reader(f)
	case "wav":
		r, err = newWAVReader(f)
	case "flac":
		r, err = newFLACReader(f)
	case "ogg":
		r, err = newOGGReader(f)
	case FormatCU8, FormatCS8, FormatCS16:
		r, err = newRawReader(f, format, rawRate)
	default:
		err = fmt.Errorf("unsupported format: %q", format)
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func wholeFrames(n, channels int) int {
	return n - n%channels
}

// --- MP3 decoder ---

type mp3Reader struct {
	f   *os.File
	dec *mp3.Decoder
	buf []byte
}

func newMP3Reader(f *os.File) (*mp3Reader, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Reader{f: f, dec: dec}, nil
}

// ReadFrames converts go-mp3's 16-bit stereo output.
func (r *mp3Reader) ReadFrames(dst []float64) (int, error) {
	want := wholeFrames(len(dst), 2) * 2
	if cap(r.buf) < want {
		r.buf = make([]byte, want)
	}
	n, err := io.ReadFull(r.dec, r.buf[:want])
	vals := wholeFrames(n/2, 2)
	if vals == 0 {
		if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return 0, err
	}
	for i := 0; i < vals; i++ {
		dst[i] = float64(int16(binary.LittleEndian.Uint16(r.buf[2*i:]))) / 32768
	}
	return vals, nil
}

func (r *mp3Reader) Rewind() error {
	_, err := r.dec.Seek(0, io.SeekStart)
	return err
}

func (r *mp3Reader) SampleRate() float64 { return float64(r.dec.SampleRate()) }
func (r *mp3Reader) Channels() int       { return 2 }
func (r *mp3Reader) Close() error        { return r.f.Close() }

// --- WAV decoder ---

type wavReader struct {
	f        *os.File
	dec      *wav.Decoder
	buf      *audio.IntBuffer
	rate     int
	channels int
	offset   float64 // 8-bit WAV is unsigned
	scale    float64
}

func newWAVReader(f *os.File) (*wavReader, error) {
	r := &wavReader{f: f}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *wavReader) open() error {
	dec := wav.NewDecoder(r.f)
	if !dec.IsValidFile() {
		return errors.New("invalid WAV file")
	}
	if dec.WavAudioFormat != 1 {
		return fmt.Errorf("unsupported WAV encoding %d, want integer PCM", dec.WavAudioFormat)
	}
	// FwdToPCM positions the reader at the start of PCM data
	if err := dec.FwdToPCM(); err != nil {
		return fmt.Errorf("reading WAV PCM data: %w", err)
	}

	depth := int(dec.BitDepth)
	switch depth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("unsupported WAV bit depth %d", depth)
	}
	if dec.NumChans == 0 {
		return errors.New("WAV file has no channels")
	}

	r.dec = dec
	r.rate = int(dec.SampleRate)
	r.channels = int(dec.NumChans)
	r.scale = float64(int64(1) << (depth - 1))
	r.offset = 0
	if depth == 8 {
		r.offset = 128
	}
	r.buf = &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: r.channels, SampleRate: r.rate},
		SourceBitDepth: depth,
	}
	return nil
}

func (r *wavReader) ReadFrames(dst []float64) (int, error) {
	want := wholeFrames(len(dst), r.channels)
	if cap(r.buf.Data) < want {
		r.buf.Data = make([]int, want)
	}
	r.buf.Data = r.buf.Data[:want]
	n, err := r.dec.PCMBuffer(r.buf)
	if err != nil {
		return 0, err
	}
	n = wholeFrames(n, r.channels)
	if n == 0 {
		return 0, io.EOF
	}
	for i := 0; i < n; i++ {
		dst[i] = (float64(r.buf.Data[i]) - r.offset) / r.scale
	}
	return n, nil
}

func (r *wavReader) Rewind() error {
	if _, err := r.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return r.open()
}

func (r *wavReader) SampleRate() float64 { return float64(r.rate) }
func (r *wavReader) Channels() int       { return r.channels }
func (r *wavReader) Close() error        { return r.f.Close() }

// --- FLAC decoder ---

type flacReader struct {
	f       *os.File
	stream  *flac.Stream
	store   []float64
	pending []float64
	scale   float64
}

func newFLACReader(f *os.File) (*flacReader, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	if stream.Info.NChannels == 0 {
		return nil, errors.New("FLAC stream has no channels")
	}
	return &flacReader{
		f:      f,
		stream: stream,
		scale:  float64(int64(1) << (stream.Info.BitsPerSample - 1)),
	}, nil
}

func (r *flacReader) ReadFrames(dst []float64) (int, error) {
	channels := r.Channels()
	for len(r.pending) == 0 {
		frame, err := r.stream.ParseNext()
		if err != nil {
			return 0, err
		}
		n := int(frame.Subframes[0].NSamples)
		r.store = r.store[:0]
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				r.store = append(r.store, float64(frame.Subframes[ch].Samples[i])/r.scale)
			}
		}
		r.pending = r.store
	}
	n := copy(dst[:wholeFrames(len(dst), channels)], r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *flacReader) Rewind() error {
	r.pending = nil
	_, err := r.stream.Seek(0)
	return err
}

func (r *flacReader) SampleRate() float64 { return float64(r.stream.Info.SampleRate) }
func (r *flacReader) Channels() int       { return int(r.stream.Info.NChannels) }
func (r *flacReader) Close() error        { return r.f.Close() }

// --- OGG Vorbis decoder ---

type oggReader struct {
	f   *os.File
	dec *oggvorbis.Reader
	buf []float32
}

func newOGGReader(f *os.File) (*oggReader, error) {
	dec, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggReader{f: f, dec: dec}, nil
}

func (r *oggReader) ReadFrames(dst []float64) (int, error) {
	want := wholeFrames(len(dst), r.Channels())
	if cap(r.buf) < want {
		r.buf = make([]float32, want)
	}
	n, err := r.dec.Read(r.buf[:want])
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	for i := 0; i < n; i++ {
		dst[i] = float64(r.buf[i])
	}
	return n, nil
}

func (r *oggReader) Rewind() error       { return r.dec.SetPosition(0) }
func (r *oggReader) SampleRate() float64 { return float64(r.dec.SampleRate()) }
func (r *oggReader) Channels() int       { return r.dec.Channels() }
func (r *oggReader) Close() error        { return r.f.Close() }

// --- Headerless IQ recordings ---

type rawReader struct {
	f      *os.File
	format string
	width  int
	rate   float64
	buf    []byte
}

func newRawReader(f *os.File, format string, rate float64) (*rawReader, error) {
	width, err := bytesPerValue(format)
	if err != nil {
		return nil, err
	}
	return &rawReader{f: f, format: format, width: width, rate: rate}, nil
}

func (r *rawReader) ReadFrames(dst []float64) (int, error) {
	want := wholeFrames(len(dst), 2) * r.width
	if cap(r.buf) < want {
		r.buf = make([]byte, want)
	}
	n, err := io.ReadFull(r.f, r.buf[:want])
	vals := wholeFrames(n/r.width, 2)
	if vals == 0 {
		if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return 0, err
	}
	return decodeRaw(r.format, r.buf[:vals*r.width], dst), nil
}

func (r *rawReader) Rewind() error {
	_, err := r.f.Seek(0, io.SeekStart)
	return err
}

func (r *rawReader) SampleRate() float64 { return r.rate }
func (r *rawReader) Channels() int       { return 2 }
func (r *rawReader) Close() error        { return r.f.Close() }

// pcm16 adapts a frameReader to the signed 16-bit little endian stream the
// audio device plays.
type pcm16 struct {
	r    frameReader
	loop bool
	vals []float64
}

func (p *pcm16) Read(b []byte) (int, error) {
	want := wholeFrames(len(b)/2, p.r.Channels())
	if want == 0 {
		return 0, nil
	}
	if cap(p.vals) < want {
		p.vals = make([]float64, want)
	}
	n, err := p.r.ReadFrames(p.vals[:want])
	if errors.Is(err, io.EOF) && p.loop {
		if err = p.r.Rewind(); err != nil {
			return 0, err
		}
		n, err = p.r.ReadFrames(p.vals[:want])
	}
	for i := 0; i < n; i++ {
		v := max(-1, min(1, p.vals[i]))
		binary.LittleEndian.PutUint16(b[2*i:], uint16(int16(v*32767)))
	}
	return 2 * n, err
}
