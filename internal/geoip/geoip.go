// 包 geoip：访客 IP → 国家（MaxMind GeoIP2/GeoLite2 Country 库），供“定位到我所在国家”使用
package geoip

import (
	"errors"
	"fmt"
	"net"
	"time"

	"religion-map/internal/metrics"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
)

var ErrNotFound = errors.New("country not found")

// Location：查询结果；Name 为地图要素使用的显示名
type Location struct {
	IP      string `json:"ip"`
	ISOCode string `json:"iso_code"`
	Name    string `json:"name"`
}

// Locator：api 层依赖的查询接口
type Locator interface {
	Lookup(ip net.IP) (Location, error)
}

// 文档注释：基于 mmdb 文件的国家查询
// 约束：Reader 并发安全；进程退出前 Close。
type Reader struct {
	db *geoip2.Reader
}

func Open(path string) (*Reader, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip %s: %w", path, err)
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

// Lookup：查询国家；英文名经 CanonicalName 归一化为地图显示名
func (r *Reader) Lookup(ip net.IP) (Location, error) {
	if ip == nil {
		metrics.GeoIPLookupsTotal.WithLabelValues("invalid").Inc()
		return Location{}, fmt.Errorf("%w: invalid ip", ErrNotFound)
	}
	rec, err := r.db.Country(ip)
	if err != nil {
		metrics.GeoIPLookupsTotal.WithLabelValues("error").Inc()
		return Location{}, err
	}
	name := rec.Country.Names["en"]
	if name == "" {
		metrics.GeoIPLookupsTotal.WithLabelValues("miss").Inc()
		return Location{}, fmt.Errorf("%w: %s", ErrNotFound, ip)
	}
	metrics.GeoIPLookupsTotal.WithLabelValues("hit").Inc()
	return Location{IP: ip.String(), ISOCode: rec.Country.IsoCode, Name: CanonicalName(name)}, nil
}

// Describe：库的类型与构建时间，用于启动日志
func (r *Reader) Describe() string { return Describe(r.db.Metadata()) }

func Describe(m maxminddb.Metadata) string {
	built := time.Unix(int64(m.BuildEpoch), 0).UTC().Format("2006-01-02")
	return fmt.Sprintf("%s ipv%d built %s", m.DatabaseType, m.IPVersion, built)
}
