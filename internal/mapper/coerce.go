package mapper

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ==================== 通用转换 ====================

// Text 任意标量转字符串
func Text(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		// JSON 数字统一是 float64，避免科学计数法
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return fmt.Sprint(x), nil
	}
}

// BigID 大数字 ID 转字符串存储，超出前端安全精度的单号不能用数字存
// 0 / 空串表示“未设置”，返回 nil
func BigID(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case string:
		if x == "" || x == "0" {
			return nil, nil
		}
		return x, nil
	case float64:
		if x == 0 {
			return nil, nil
		}
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	default:
		return nil, fmt.Errorf("无法作为 ID 处理: %T", v)
	}
}

// Int 数字转 int
func Int(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case float64:
		return int(x), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("无法转 int: %T", v)
	}
}

// Cents 金额（主单位）转最小货币单位整数，四舍五入
func Cents(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case float64:
		return int64(math.Round(x * 100)), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, err
		}
		return int64(math.Round(f * 100)), nil
	default:
		return nil, fmt.Errorf("无法转金额: %T", v)
	}
}

// WholeAmount 平台已按最小货币单位计价的金额（越南盾等无辅币币种），不做放大
func WholeAmount(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case float64:
		return int64(math.Round(x)), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, err
		}
		return int64(math.Round(f)), nil
	default:
		return nil, fmt.Errorf("无法转金额: %T", v)
	}
}

// Bool 宽松布尔
func Bool(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	case string:
		return x == "true" || x == "1", nil
	default:
		return nil, fmt.Errorf("无法转 bool: %T", v)
	}
}

// ==================== 时间转换 ====================

// EpochSeconds 秒级时间戳转 time.Time (UTC)
// 0 表示平台侧“未设置”，返回 nil 而不是 1970 年
func EpochSeconds(v interface{}) (interface{}, error) {
	sec, err := epochInt(v)
	if err != nil || sec == 0 {
		return nil, err
	}
	return time.Unix(sec, 0).UTC(), nil
}

// EpochMillis 毫秒级时间戳转 time.Time (UTC)，0 同样视为未设置
func EpochMillis(v interface{}) (interface{}, error) {
	ms, err := epochInt(v)
	if err != nil || ms == 0 {
		return nil, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

func epochInt(v interface{}) (int64, error) {
	switch x := v.(type) {
	case float64:
		return int64(x), nil
	case string:
		if x == "" {
			return 0, nil
		}
		return strconv.ParseInt(x, 10, 64)
	default:
		return 0, fmt.Errorf("无法作为时间戳处理: %T", v)
	}
}

// ISOLocal 带小数秒和时区偏移的 ISO-8601 串
// 平台约定是“裁掉小数和偏移后按本地分量解析”，不是真正的时区换算
// 已知局限：跨时区店铺的时间会有偏差，与原平台行为保持一致
func ISOLocal(v interface{}) (interface{}, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("无法作为时间处理: %T", v)
	}
	if s == "" {
		return nil, nil
	}
	if len(s) > 19 {
		s = s[:19]
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// LocalDateTime 空格分隔的本地时间串 "2006-01-02 15:04:05"（聚水潭风格）
// 与 ISOLocal 一样按本地分量解析，不做时区换算
func LocalDateTime(v interface{}) (interface{}, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("无法作为时间处理: %T", v)
	}
	if s == "" {
		return nil, nil
	}
	if len(s) > 19 {
		s = s[:19]
	}
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ==================== 集合转换 ====================

// StringifyList 无关系模型的数组字段降级为字符串存储
// 供人工排查或下游任务再解析
func StringifyList(v interface{}) (interface{}, error) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("不是数组: %T", v)
	}
	if len(list) == 0 {
		return nil, nil
	}
	parts := make([]string, len(list))
	for i, item := range list {
		parts[i] = fmt.Sprint(item)
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

// StringSlice 字符串数组字段（标签类）
func StringSlice(v interface{}) (interface{}, error) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("不是数组: %T", v)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, fmt.Sprint(item))
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
