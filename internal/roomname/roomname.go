// Package roomname generates memorable room names such as
// "amber-otter-lantern".
package roomname

import (
	"crypto/rand"
	"math/big"
	"strings"
)

var (
	colors = []string{
		"amber", "azure", "coral", "crimson", "ebony", "golden", "indigo", "ivory", "jade", "lilac",
		"olive", "pearl", "ruby", "saffron", "scarlet", "silver", "teal", "umber", "violet", "willow",
	}
	moods = []string{
		"brave", "calm", "cheery", "cozy", "eager", "gentle", "jolly", "lucky", "merry", "nimble",
		"plucky", "quiet", "rapid", "sleepy", "snappy", "steady", "sunny", "swift", "witty", "zesty",
	}
	animals = []string{
		"badger", "beaver", "falcon", "ferret", "gecko", "heron", "ibis", "koala", "lemur", "lynx",
		"marten", "narwhal", "ocelot", "otter", "panda", "puffin", "quokka", "raven", "tapir", "wombat",
	}
	things = []string{
		"anchor", "beacon", "bridge", "canyon", "comet", "harbor", "kettle", "lantern", "meadow", "nebula",
		"orbit", "pebble", "prairie", "rocket", "signal", "summit", "thimble", "tunnel", "valley", "whistle",
	}
)

// Generate returns a random three-word name. Each word comes from a
// different list, in the order color or mood, animal, thing.
func Generate() string {
	first := colors
	if pick(2) == 1 {
		first = moods
	}
	return strings.Join([]string{
		first[pick(len(first))],
		animals[pick(len(animals))],
		things[pick(len(things))],
	}, "-")
}

// pick returns a uniformly random index below n.
func pick(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("roomname: crypto/rand failed: " + err.Error())
	}
	return int(v.Int64())
}
