/*
 * channels.go, part of goScatter.
 *
 * Copyright 2026 The goScatter authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package scatter

import (
	"fmt"
	"strconv"
	"strings"
)

// Channel is a named rule giving the weight with which an atom of a given
// nuclear charge contributes to one density channel. An atom contributes to the
// channel only if its weight is non-zero. Channels are read-only and can be
// shared between goroutines.
type Channel interface {
	Name() string
	Weight(charge float64) float64
}

type channel struct {
	name   string
	weight func(float64) float64
}

func (c channel) Name() string                  { return c.name }
func (c channel) Weight(charge float64) float64 { return c.weight(charge) }
func (c channel) String() string                { return c.name }

// FullChannel weights each atom by its nuclear charge.
func FullChannel() Channel {
	return channel{"full", func(q float64) float64 { return q }}
}

// ValenceChannel weights each atom by its number of valence electrons.
func ValenceChannel() Channel {
	return channel{"valence", Valence}
}

// CoreChannel weights each atom by its number of core electrons. Atoms of
// the first period do not contribute.
func CoreChannel() Channel {
	return channel{"core", Core}
}

// CountChannel gives every atom with a positive charge a weight of one.
func CountChannel() Channel {
	return channel{"count", func(q float64) float64 {
		if q > 0 {
			return 1
		}
		return 0
	}}
}

// ElementChannel selects the atoms with nuclear charge z, each with weight one.
func ElementChannel(z float64) Channel {
	return channel{fmt.Sprintf("element:%g", z), func(q float64) float64 {
		if q == z {
			return 1
		}
		return 0
	}}
}

// DefaultChannels returns the full and valence channels.
func DefaultChannels() []Channel {
	return []Channel{FullChannel(), ValenceChannel()}
}

// ParseChannel parses a single channel name: full, valence, core, count or
// element:Z, where Z is a nuclear charge or an element symbol.
func ParseChannel(name string) (Channel, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "full":
		return FullChannel(), nil
	case "valence":
		return ValenceChannel(), nil
	case "core":
		return CoreChannel(), nil
	case "count":
		return CountChannel(), nil
	}
	if el, ok := strings.CutPrefix(name, "element:"); ok {
		if z, err := strconv.ParseFloat(el, 64); err == nil && z > 0 {
			return ElementChannel(z), nil
		}
		if z, ok := SymbolToZ(el); ok {
			return ElementChannel(z), nil
		}
		return nil, InvalidConfigError("unknown element in channel %q", name)
	}
	return nil, InvalidConfigError("unknown channel %q", name)
}

// ParseChannels parses a list of channel names. Each element may itself be a
// comma-separated list, so both []string{"full","valence"} and
// []string{"full,valence"} are accepted. Duplicate channels are an error.
func ParseChannels(names ...string) ([]Channel, error) {
	var ret []Channel
	seen := make(map[string]bool)
	for _, n := range names {
		for _, field := range strings.Split(n, ",") {
			if strings.TrimSpace(field) == "" {
				continue
			}
			c, err := ParseChannel(field)
			if err != nil {
				return nil, err
			}
			if seen[c.Name()] {
				return nil, InvalidConfigError("channel %q given twice", c.Name())
			}
			seen[c.Name()] = true
			ret = append(ret, c)
		}
	}
	if len(ret) == 0 {
		return nil, InvalidConfigError("no channels given")
	}
	return ret, nil
}

// ChannelNames returns the names of the given channels.
func ChannelNames(channels []Channel) []string {
	ret := make([]string, len(channels))
	for i, c := range channels {
		ret[i] = c.Name()
	}
	return ret
}
