package models

import (
	"encoding/hex"
	"time"
)

// Torrent is the decoded content of a metainfo file.
type Torrent struct {
	Info Info `yaml:"info"`
	// AnnounceList holds every tracker URL from "announce" and "announce-list"
	// once, in first-seen order.
	AnnounceList []string `yaml:"announce_list"`
	// AnnounceTiers is "announce-list" as written, tiers in priority order.
	AnnounceTiers [][]string `yaml:"announce_tiers,omitempty"`
	CreationDate  *time.Time `yaml:"creation_date,omitempty"`
	Comment       *string    `yaml:"comment,omitempty"`
	CreatedBy     *string    `yaml:"created_by,omitempty"`
	Encoding      *string    `yaml:"encoding,omitempty"`
}

type Info struct {
	Name        string `yaml:"name"`
	Files       []File `yaml:"files"`
	Hash        Hash   `yaml:"hash"`
	PieceLength uint32 `yaml:"piece_length"`
	Pieces      []Hash `yaml:"-"`
}

func (i Info) TotalLength() uint64 {
	var total uint64
	for _, f := range i.Files {
		total += f.Length
	}
	return total
}

func (i Info) PieceCount() int {
	return len(i.Pieces)
}

type File struct {
	Length uint64  `yaml:"length"`
	MD5Sum *string `yaml:"md5sum,omitempty"`
	// Path is relative to the download directory.
	Path         string   `yaml:"path"`
	PathSegments []string `yaml:"-"`
}

// Hash is a SHA-1 digest.
type Hash [20]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) MarshalYAML() (interface{}, error) {
	return h.String(), nil
}
