package decoder

import (
	"crypto/sha1"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/WendelHime/torrentinfo/internal/bencode"
	"github.com/WendelHime/torrentinfo/internal/shared/models"
	"github.com/pkg/errors"
)

type MetafileDecoder interface {
	Decode(io.Reader) (models.Torrent, error)
	DecodeBytes([]byte) (models.Torrent, error)
	DecodeFile(path string) (models.Torrent, error)
}

type decoder struct {
	log     *slog.Logger
	maxSize int64
}

type Option func(*decoder)

func WithLogger(logger *slog.Logger) Option {
	return func(d *decoder) {
		d.log = logger
	}
}

// WithMaxSize limits the size of metafiles read through Decode and DecodeFile.
func WithMaxSize(n int64) Option {
	return func(d *decoder) {
		if n > 0 {
			d.maxSize = n
		}
	}
}

func NewDecoder(opts ...Option) MetafileDecoder {
	d := decoder{log: slog.Default(), maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func (d decoder) DecodeFile(path string) (models.Torrent, error) {
	f, err := os.Open(path)
	if err != nil {
		d.log.Error("failed to open torrent", slog.String("path", path), slog.Any("error", err))
		return models.Torrent{}, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	return d.Decode(f)
}

func (d decoder) Decode(torrent io.Reader) (models.Torrent, error) {
	buf, err := ReadAll(torrent, d.maxSize)
	if err != nil {
		d.log.Error("failed to read torrent", slog.Any("error", err))
		return models.Torrent{}, err
	}
	return d.DecodeBytes(buf)
}

func (d decoder) DecodeBytes(buf []byte) (models.Torrent, error) {
	root, err := bencode.Decode(buf)
	if err != nil {
		d.log.Error("failed to decode torrent", slog.Any("error", err))
		return models.Torrent{}, errors.Wrap(err, "decode torrent")
	}

	torrent, err := torrentFromValue(root)
	if err != nil {
		d.log.Error("failed to map torrent metainfo", slog.Any("error", err))
		return models.Torrent{}, errors.Wrap(err, "decode torrent")
	}

	d.log.Debug("decoded torrent",
		slog.String("name", torrent.Info.Name),
		slog.String("info_hash", torrent.Info.Hash.String()),
		slog.Int("files", len(torrent.Info.Files)),
		slog.Int("pieces", torrent.Info.PieceCount()),
		slog.Int("trackers", len(torrent.AnnounceList)))

	return torrent, nil
}

func torrentFromValue(root *bencode.Value) (models.Torrent, error) {
	var torrent models.Torrent
	if root.Kind() != bencode.KindDict {
		return torrent, invalid("", ErrWrongType, "expected top-level dictionary, got %s", root.Kind())
	}

	infoValue, ok := root.Get("info")
	if !ok {
		return torrent, missing("info")
	}
	info, err := infoFromValue(infoValue, "info")
	if err != nil {
		return torrent, err
	}
	torrent.Info = info

	announce := newAnnounceSet()
	if v, ok := root.Get("announce"); ok {
		url, err := asString(v, "announce")
		if err != nil {
			return torrent, err
		}
		announce.add(url)
	}
	if v, ok := root.Get("announce-list"); ok {
		tiers, err := announceTiers(v, "announce-list")
		if err != nil {
			return torrent, err
		}
		for _, tier := range tiers {
			for _, url := range tier {
				announce.add(url)
			}
		}
		torrent.AnnounceTiers = tiers
	}
	torrent.AnnounceList = announce.urls

	if v, ok := root.Get("creation date"); ok {
		secs, err := asInt(v, "creation date")
		if err != nil {
			return torrent, err
		}
		created := time.Unix(secs, 0).Local()
		torrent.CreationDate = &created
	}

	if torrent.Comment, err = optionalString(root, "comment", "comment"); err != nil {
		return torrent, err
	}
	if torrent.CreatedBy, err = optionalString(root, "created by", "created by"); err != nil {
		return torrent, err
	}
	if torrent.Encoding, err = optionalString(root, "encoding", "encoding"); err != nil {
		return torrent, err
	}

	return torrent, nil
}

func infoFromValue(v *bencode.Value, field string) (models.Info, error) {
	var info models.Info
	if v.Kind() != bencode.KindDict {
		return info, invalid(field, ErrWrongType, "expected dictionary, got %s", v.Kind())
	}

	// hash the bytes exactly as they appeared in the source
	info.Hash = sha1.Sum(v.Raw())

	pieceLength, err := requiredInt(v, "piece length", field+".piece length")
	if err != nil {
		return info, err
	}
	if pieceLength <= 0 || pieceLength > math.MaxUint32 {
		return info, invalid(field+".piece length", ErrOutOfRange, "%d is not a positive 32-bit length", pieceLength)
	}
	info.PieceLength = uint32(pieceLength)

	piecesValue, ok := v.Get("pieces")
	if !ok {
		return info, missing(field + ".pieces")
	}
	info.Pieces, err = pieceHashes(piecesValue, field+".pieces")
	if err != nil {
		return info, err
	}

	nameValue, ok := v.Get("name")
	if !ok {
		return info, missing(field + ".name")
	}
	info.Name, err = asString(nameValue, field+".name")
	if err != nil {
		return info, err
	}

	md5sum, err := optionalString(v, "md5sum", field+".md5sum")
	if err != nil {
		return info, err
	}

	if filesValue, ok := v.Get("files"); ok {
		items, err := asList(filesValue, field+".files")
		if err != nil {
			return info, err
		}
		if len(items) == 0 {
			return info, invalid(field+".files", ErrMissingField, "file list is empty")
		}
		info.Files = make([]models.File, 0, len(items))
		for i, item := range items {
			file, err := fileFromValue(item, fmt.Sprintf("%s.files[%d]", field, i))
			if err != nil {
				return info, err
			}
			info.Files = append(info.Files, file)
		}
		return info, nil
	}

	length, err := requiredLength(v, "length", field+".length")
	if err != nil {
		return info, err
	}
	info.Files = []models.File{{
		Length:       length,
		MD5Sum:       md5sum,
		Path:         info.Name,
		PathSegments: []string{info.Name},
	}}
	return info, nil
}

func fileFromValue(v *bencode.Value, field string) (models.File, error) {
	var file models.File
	if v.Kind() != bencode.KindDict {
		return file, invalid(field, ErrWrongType, "expected dictionary, got %s", v.Kind())
	}

	length, err := requiredLength(v, "length", field+".length")
	if err != nil {
		return file, err
	}
	file.Length = length

	if file.MD5Sum, err = optionalString(v, "md5sum", field+".md5sum"); err != nil {
		return file, err
	}

	pathValue, ok := v.Get("path")
	if !ok {
		return file, missing(field + ".path")
	}
	items, err := asList(pathValue, field+".path")
	if err != nil {
		return file, err
	}
	if len(items) == 0 {
		return file, invalid(field+".path", ErrMissingField, "path has no segments")
	}
	file.PathSegments = make([]string, 0, len(items))
	for i, item := range items {
		segment, err := asString(item, fmt.Sprintf("%s.path[%d]", field, i))
		if err != nil {
			return file, err
		}
		file.PathSegments = append(file.PathSegments, segment)
	}
	file.Path = filepath.Join(file.PathSegments...)

	return file, nil
}

func pieceHashes(v *bencode.Value, field string) ([]models.Hash, error) {
	raw, ok := v.Bytes()
	if !ok {
		return nil, invalid(field, ErrWrongType, "expected byte string, got %s", v.Kind())
	}
	if len(raw)%sha1.Size != 0 {
		return nil, invalid(field, ErrInvalidPieces, "got %d bytes", len(raw))
	}

	hashes := make([]models.Hash, len(raw)/sha1.Size)
	for i := range hashes {
		copy(hashes[i][:], raw[i*sha1.Size:(i+1)*sha1.Size])
	}
	return hashes, nil
}

func announceTiers(v *bencode.Value, field string) ([][]string, error) {
	tierValues, err := asList(v, field)
	if err != nil {
		return nil, err
	}
	tiers := make([][]string, 0, len(tierValues))
	for i, tierValue := range tierValues {
		tierField := fmt.Sprintf("%s[%d]", field, i)
		urlValues, err := asList(tierValue, tierField)
		if err != nil {
			return nil, err
		}
		tier := make([]string, 0, len(urlValues))
		for j, urlValue := range urlValues {
			url, err := asString(urlValue, fmt.Sprintf("%s[%d]", tierField, j))
			if err != nil {
				return nil, err
			}
			tier = append(tier, url)
		}
		tiers = append(tiers, tier)
	}
	return tiers, nil
}

type announceSet struct {
	seen map[string]struct{}
	urls []string
}

func newAnnounceSet() *announceSet {
	return &announceSet{seen: make(map[string]struct{}), urls: make([]string, 0)}
}

func (s *announceSet) add(url string) {
	if _, ok := s.seen[url]; ok {
		return
	}
	s.seen[url] = struct{}{}
	s.urls = append(s.urls, url)
}

func asString(v *bencode.Value, field string) (string, error) {
	b, ok := v.Bytes()
	if !ok {
		return "", invalid(field, ErrWrongType, "expected byte string, got %s", v.Kind())
	}
	if !utf8.Valid(b) {
		return "", invalid(field, ErrInvalidUTF8, "%q", b)
	}
	return string(b), nil
}

func asInt(v *bencode.Value, field string) (int64, error) {
	n, ok := v.Int()
	if !ok {
		return 0, invalid(field, ErrWrongType, "expected integer, got %s", v.Kind())
	}
	return n, nil
}

func asList(v *bencode.Value, field string) ([]*bencode.Value, error) {
	items, ok := v.List()
	if !ok {
		return nil, invalid(field, ErrWrongType, "expected list, got %s", v.Kind())
	}
	return items, nil
}

func optionalString(dict *bencode.Value, key, field string) (*string, error) {
	v, ok := dict.Get(key)
	if !ok {
		return nil, nil
	}
	s, err := asString(v, field)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func requiredInt(dict *bencode.Value, key, field string) (int64, error) {
	v, ok := dict.Get(key)
	if !ok {
		return 0, missing(field)
	}
	return asInt(v, field)
}

func requiredLength(dict *bencode.Value, key, field string) (uint64, error) {
	n, err := requiredInt(dict, key, field)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, invalid(field, ErrOutOfRange, "negative length %d", n)
	}
	return uint64(n), nil
}
