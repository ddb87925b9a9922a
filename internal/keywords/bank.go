// Package keywords implements the keyword bank and page scoring used to
// triage RFP pages into text-bearing vs drawing-like classifications.
package keywords

import "sort"

// CustomCategory is the category name used for request-supplied keywords.
const CustomCategory = "custom"

// Bank maps a category name to its ordered list of lowercase phrase keywords.
// A phrase may appear in more than one category; phrases are matched
// independently. The default bank is shared process-wide and must never be
// mutated - use WithCustom / WithExtra for per-request overlays.
type Bank map[string][]string

// DefaultBank returns the built-in keyword bank covering LED display RFP
// vocabulary.
func DefaultBank() Bank {
	return Bank{
		"display_hardware": {
			"led display", "led screen", "led wall", "video display", "video wall",
			"video board", "scoreboard", "ribbon board", "fascia", "marquee",
			"digital signage", "display system", "led module", "led panel",
			"led tile", "led cabinet", "direct view led", "dvled", "fine pitch",
			"narrow pixel pitch", "smd led", "cob led", "micro led",
			"transparent led", "flexible led", "curved display", "outdoor led",
			"indoor led", "led mesh", "led curtain", "led strip", "pixel board",
		},
		"specs": {
			"pixel pitch", "pixel density", "resolution", "brightness", "nit",
			"candela", "contrast ratio", "refresh rate", "viewing angle",
			"viewing distance", "color depth", "bit depth", "grayscale",
			"gamut", "hdr", "ip rating", "ip65", "ip54", "ingress protection",
			"operating temperature", "power consumption", "wattage",
			"btu", "weight per panel", "panel dimension", "module size",
			"cabinet size", "aspect ratio", "scan rate", "uniformity",
			"mtbf", "mean time between failure", "lifespan", "lifecycle",
			"luminance", "chromaticity",
		},
		"electrical": {
			"electrical", "power distribution", "power supply", "pdu",
			"circuit breaker", "amperage", "voltage", "120v", "208v", "240v",
			"480v", "single phase", "three phase", "conduit", "wire gauge",
			"awg", "junction box", "disconnect", "transformer", "ups",
			"uninterruptible", "backup power", "generator", "ground fault",
			"gfci", "arc fault", "nec", "electrical code", "load calculation",
			"demand factor", "cat5", "cat6", "cat6a", "fiber optic",
			"data cable", "ethernet", "network switch", "patch panel",
			"data drop", "data count", "fiber strand", "single mode",
			"multi mode", "hdmi", "sdi", "displayport", "dvi",
			"signal distribution", "video processor", "scaler", "switcher",
			"media player", "content management", "cms", "controller",
			"receiving card", "sending card",
		},
		"structural": {
			"structural", "steel", "mounting", "bracket", "cleat",
			"z-clip", "unistrut", "framing", "sub-structure", "substrate",
			"rigging", "flyware", "truss", "hoist", "motor", "chain hoist",
			"load bearing", "dead load", "live load", "wind load",
			"seismic", "anchorage", "anchor bolt", "concrete embed",
			"welding", "galvanized", "powder coat", "stainless",
			"aluminum extrusion", "pe stamp", "structural engineer",
			"structural calculation", "deflection", "moment", "shear",
			"bearing plate", "base plate", "column", "beam",
			"cantilever", "outrigger",
		},
		"installation": {
			"installation", "install", "labor", "man hours", "crew",
			"mobilization", "demobilization", "scaffolding", "lift",
			"boom lift", "scissor lift", "crane", "aerial work platform",
			"safety harness", "fall protection", "osha", "ppe",
			"commissioning", "testing", "alignment", "calibration",
			"training", "warranty", "maintenance", "service agreement",
			"preventive maintenance", "spare parts", "on-site support",
			"remote support", "noc", "network operations",
			"punch list", "substantial completion", "final completion",
			"certificate of occupancy", "closeout", "as-built",
			"shop drawing", "submittal",
		},
		"control_data": {
			"control system", "control room", "noc", "network operations center",
			"content management", "cms", "scheduling software", "playlist",
			"novastar", "brompton", "colorlight", "dbstar",
			"video processor", "scaler", "switcher", "matrix switcher",
			"media server", "brightsign", "crestron", "extron",
			"dante", "artnet", "dmx", "rs232", "rs485", "tcp ip",
			"api integration", "remote monitoring", "snmp",
			"redundancy", "failover", "backup system",
		},
		"permits_logistics": {
			"permit", "building permit", "electrical permit", "inspection",
			"code compliance", "building code", "fire code", "ada",
			"accessibility", "zoning", "variance", "hoa",
			"shipping", "freight", "crating", "packaging",
			"customs", "import", "tariff", "duty", "bonded warehouse",
			"staging", "laydown area", "storage", "receiving dock",
			"delivery schedule", "lead time", "manufacturing time",
			"production schedule",
		},
		"commercial": {
			"bid form", "bid bond", "performance bond", "payment bond",
			"surety", "insurance", "certificate of insurance", "coi",
			"indemnification", "liability", "liquidated damages",
			"retainage", "retention", "change order", "rfi",
			"request for information", "addendum", "amendment",
			"scope of work", "sow", "specification", "division 11",
			"division 10", "division 26", "division 27", "division 28",
			"csi", "masterformat", "prevailing wage", "davis bacon",
			"union", "non union", "minority participation", "mbe", "wbe",
			"dbe", "subcontractor", "general contractor", "owner",
			"architect", "consultant", "engineer of record",
			"base bid", "alternate", "option", "allowance",
			"unit price", "lump sum", "guaranteed maximum price", "gmp",
			"cost plus", "time and materials", "milestone", "phase",
			"schedule of values", "pay application", "invoice",
			"net 30", "net 60", "progress payment",
		},
		"manufacturers": {
			"lg", "samsung", "daktronics", "watchfire", "yaham",
			"absen", "leyard", "planar", "unilumin", "roe visual",
			"barco", "christie", "nec", "sharp", "sony",
			"mitsubishi", "lighthouse", "sna displays", "nanolumens",
			"optec", "formetco", "vanguard", "dicolor", "aoto",
			"infiled", "novastar", "colorlight", "brompton",
			"megapixel vr", "elation", "martin", "chauvet",
		},
	}
}

// Categories returns the bank's category names in sorted order.
func (b Bank) Categories() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithCustom returns a copy of the bank extended with a transient "custom"
// category containing the given phrases. The receiver is not modified.
// Returns the receiver unchanged if phrases is empty.
func (b Bank) WithCustom(phrases []string) Bank {
	return b.WithExtra(map[string][]string{CustomCategory: phrases})
}

// WithExtra returns a copy of the bank extended with the given categories.
// Extra phrases for an existing category are appended after the base
// phrases. The receiver is not modified.
func (b Bank) WithExtra(extra map[string][]string) Bank {
	merged := false
	for _, phrases := range extra {
		if len(phrases) > 0 {
			merged = true
			break
		}
	}
	if !merged {
		return b
	}

	out := make(Bank, len(b)+len(extra))
	for name, phrases := range b {
		out[name] = phrases
	}
	for name, phrases := range extra {
		if len(phrases) == 0 {
			continue
		}
		if existing, ok := out[name]; ok {
			combined := make([]string, 0, len(existing)+len(phrases))
			combined = append(combined, existing...)
			combined = append(combined, phrases...)
			out[name] = combined
		} else {
			out[name] = phrases
		}
	}
	return out
}
