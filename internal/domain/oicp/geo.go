package oicp

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

// GeoCoordinatesFormat 坐标线上格式
type GeoCoordinatesFormat string

const (
	GeoFormatGoogle              GeoCoordinatesFormat = "Google"
	GeoFormatDecimalDegree       GeoCoordinatesFormat = "DecimalDegree"
	GeoFormatDegreeMinuteSeconds GeoCoordinatesFormat = "DegreeMinuteSeconds"
)

var geoFormats = []GeoCoordinatesFormat{GeoFormatGoogle, GeoFormatDecimalDegree, GeoFormatDegreeMinuteSeconds}

// ParseGeoCoordinatesFormat 解析坐标格式
func ParseGeoCoordinatesFormat(s string) (GeoCoordinatesFormat, error) {
	return parseEnum("geo coordinates format", s, geoFormats)
}

// IsValid 是否为已知取值
func (f GeoCoordinatesFormat) IsValid() bool { return isKnown(f, geoFormats) }

var (
	googlePattern  = regexp.MustCompile(`^(-?[0-9]{1,3}(?:\.[0-9]+)?)\s*[, ]\s*(-?[0-9]{1,3}(?:\.[0-9]+)?)$`)
	dmsPattern     = regexp.MustCompile(`^([NSEWnsew])\s*([0-9]{1,3})°\s*([0-9]{1,2})'\s*([0-9]{1,2}(?:\.[0-9]+)?)"$`)
	errNoGeoFormat = errors.New("no Google, DecimalDegree or DegreeMinuteSeconds child")
)

// GeoCoordinates WGS84坐标。Format 决定线上表示，不参与坐标比较
type GeoCoordinates struct {
	Latitude  float64
	Longitude float64
	Format    GeoCoordinatesFormat
}

// NewGeoCoordinates 创建坐标，默认十进制度格式
func NewGeoCoordinates(latitude, longitude float64) (GeoCoordinates, error) {
	g := GeoCoordinates{Latitude: latitude, Longitude: longitude, Format: GeoFormatDecimalDegree}
	if err := g.check(); err != nil {
		return GeoCoordinates{}, err
	}
	return g, nil
}

// WithFormat 返回指定线上格式的副本
func (g GeoCoordinates) WithFormat(f GeoCoordinatesFormat) GeoCoordinates {
	g.Format = f
	return g
}

// IsValid 坐标是否在取值范围内
func (g GeoCoordinates) IsValid() bool {
	return g.check() == nil
}

func (g GeoCoordinates) check() error {
	if math.IsNaN(g.Latitude) || g.Latitude < -90 || g.Latitude > 90 {
		return FormatError{Type: "latitude", Value: serialization.FormatFloat(g.Latitude), Reason: "out of range"}
	}
	if math.IsNaN(g.Longitude) || g.Longitude < -180 || g.Longitude > 180 {
		return FormatError{Type: "longitude", Value: serialization.FormatFloat(g.Longitude), Reason: "out of range"}
	}
	return nil
}

// String 诊断用文本
func (g GeoCoordinates) String() string {
	return serialization.FormatFloat(g.Latitude) + ", " + serialization.FormatFloat(g.Longitude)
}

// AppendTo 按 Format 写入坐标元素
func (g GeoCoordinates) AppendTo(parent *etree.Element, name serialization.QName) *etree.Element {
	el := serialization.AddElement(parent, name)
	switch g.Format {
	case GeoFormatGoogle:
		google := serialization.AddElement(el, ct("Google"))
		serialization.AddText(google, ct("Coordinates"),
			serialization.FormatFloat(g.Latitude)+" "+serialization.FormatFloat(g.Longitude))
	case GeoFormatDegreeMinuteSeconds:
		dms := serialization.AddElement(el, ct("DegreeMinuteSeconds"))
		serialization.AddText(dms, ct("Longitude"), formatDMS(g.Longitude, "E", "W"))
		serialization.AddText(dms, ct("Latitude"), formatDMS(g.Latitude, "N", "S"))
	default:
		dd := serialization.AddElement(el, ct("DecimalDegree"))
		serialization.AddText(dd, ct("Longitude"), serialization.FormatFloat(g.Longitude))
		serialization.AddText(dd, ct("Latitude"), serialization.FormatFloat(g.Latitude))
	}
	return el
}

// ParseGeoCoordinates 依次探测 Google、DecimalDegree、DegreeMinuteSeconds 子元素
func ParseGeoCoordinates(el *etree.Element) (GeoCoordinates, error) {
	var (
		g   GeoCoordinates
		err error
	)
	switch {
	case serialization.Child(el, ct("Google")) != nil:
		g, err = parseGoogle(serialization.Child(el, ct("Google")))
	case serialization.Child(el, ct("DecimalDegree")) != nil:
		g, err = parseDecimalDegree(serialization.Child(el, ct("DecimalDegree")))
	case serialization.Child(el, ct("DegreeMinuteSeconds")) != nil:
		g, err = parseDegreeMinuteSeconds(serialization.Child(el, ct("DegreeMinuteSeconds")))
	default:
		return GeoCoordinates{}, serialization.StructureError{Expected: ct("GeoCoordinates"), Index: -1, Cause: errNoGeoFormat}
	}
	if err != nil {
		return GeoCoordinates{}, err
	}
	if err := g.check(); err != nil {
		return GeoCoordinates{}, err
	}
	return g, nil
}

func parseGoogle(el *etree.Element) (GeoCoordinates, error) {
	raw, err := serialization.ValueOrFail(el, ct("Coordinates"))
	if err != nil {
		return GeoCoordinates{}, err
	}
	m := googlePattern.FindStringSubmatch(raw)
	if m == nil {
		return GeoCoordinates{}, serialization.InvalidFieldError{
			Field: ct("Coordinates"),
			Value: raw,
			Cause: FormatError{Type: "Google coordinates", Value: raw, Reason: "expected \"lat lon\""},
		}
	}
	lat, _ := serialization.ParseFloat(m[1])
	lon, _ := serialization.ParseFloat(m[2])
	return GeoCoordinates{Latitude: lat, Longitude: lon, Format: GeoFormatGoogle}, nil
}

func parseDecimalDegree(el *etree.Element) (GeoCoordinates, error) {
	lon, err := serialization.MapValueOrFail(el, ct("Longitude"), serialization.ParseFloat)
	if err != nil {
		return GeoCoordinates{}, err
	}
	lat, err := serialization.MapValueOrFail(el, ct("Latitude"), serialization.ParseFloat)
	if err != nil {
		return GeoCoordinates{}, err
	}
	return GeoCoordinates{Latitude: lat, Longitude: lon, Format: GeoFormatDecimalDegree}, nil
}

func parseDegreeMinuteSeconds(el *etree.Element) (GeoCoordinates, error) {
	lon, err := serialization.MapValueOrFail(el, ct("Longitude"), func(s string) (float64, error) {
		return parseDMS(s, "E", "W")
	})
	if err != nil {
		return GeoCoordinates{}, err
	}
	lat, err := serialization.MapValueOrFail(el, ct("Latitude"), func(s string) (float64, error) {
		return parseDMS(s, "N", "S")
	})
	if err != nil {
		return GeoCoordinates{}, err
	}
	return GeoCoordinates{Latitude: lat, Longitude: lon, Format: GeoFormatDegreeMinuteSeconds}, nil
}

// formatDMS 格式如 N 50° 7' 12.345"，秒保留三位小数
func formatDMS(v float64, positive, negative string) string {
	hemi := positive
	if v < 0 {
		hemi = negative
		v = -v
	}
	totalMillis := int64(math.Round(v * 3600 * 1000))
	deg := totalMillis / (3600 * 1000)
	totalMillis -= deg * 3600 * 1000
	minutes := totalMillis / (60 * 1000)
	totalMillis -= minutes * 60 * 1000
	sec := strconv.FormatFloat(float64(totalMillis)/1000, 'f', 3, 64)
	return fmt.Sprintf("%s %d° %d' %s\"", hemi, deg, minutes, sec)
}

func parseDMS(s, positive, negative string) (float64, error) {
	m := dmsPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, FormatError{Type: "degree minute seconds", Value: s, Reason: "expected H D° M' S\""}
	}
	hemi := strings.ToUpper(m[1])
	if hemi != positive && hemi != negative {
		return 0, FormatError{Type: "degree minute seconds", Value: s, Reason: "wrong hemisphere"}
	}
	deg, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	sec, _ := serialization.ParseFloat(m[4])
	if minutes >= 60 || sec >= 60 {
		return 0, FormatError{Type: "degree minute seconds", Value: s, Reason: "minutes/seconds out of range"}
	}
	v := float64(deg) + float64(minutes)/60 + sec/3600
	if hemi == negative {
		v = -v
	}
	return v, nil
}

// appendSearchCenter 仅当圆心和半径都给出时输出 SearchCenter 组
func appendSearchCenter(parent *etree.Element, ns serialization.Namespace, center *GeoCoordinates, radiusKM *float64) {
	if center == nil || radiusKM == nil {
		return
	}
	el := serialization.AddElement(parent, ns.Name("SearchCenter"))
	center.AppendTo(el, ct("GeoCoordinates"))
	serialization.AddText(el, ct("Radius"), serialization.FormatFloat(*radiusKM))
}

// parseSearchCenter 解析可选的 SearchCenter 组
func parseSearchCenter(parent *etree.Element, ns serialization.Namespace) (*GeoCoordinates, *float64, error) {
	el := serialization.Child(parent, ns.Name("SearchCenter"))
	if el == nil {
		return nil, nil, nil
	}
	center, err := serialization.MapElementOrFail(el, ct("GeoCoordinates"), ParseGeoCoordinates)
	if err != nil {
		return nil, nil, err
	}
	radius, err := serialization.MapValueOrFail(el, ct("Radius"), serialization.ParseFloat)
	if err != nil {
		return nil, nil, err
	}
	return &center, &radius, nil
}
