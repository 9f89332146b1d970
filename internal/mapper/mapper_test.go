package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ==================== 测试目标结构 ====================

type mappedOrder struct {
	ExternalOrderID string
	BuyerName       string
	TotalAmount     int64
	Quantity        int
	Labels          []string
	VariantNote     string
	OrderedAt       *time.Time
	PaidAt          *time.Time
	ModifiedAt      *time.Time
}

var testTable = Table{
	Entity: "order",
	Rules: []FieldRule{
		{VendorKey: "o_id", LocalField: "ExternalOrderID", Coerce: BigID},
		{VendorKey: "buyer", LocalField: "BuyerName", Coerce: Text},
		{VendorKey: "amount", LocalField: "TotalAmount", Coerce: Cents},
		{VendorKey: "qty", LocalField: "Quantity", Coerce: Int},
		{VendorKey: "tags", LocalField: "Labels", Coerce: StringSlice},
		{VendorKey: "variations", LocalField: "VariantNote", Coerce: StringifyList},
		{VendorKey: "order_ts", LocalField: "OrderedAt", Coerce: EpochSeconds},
		{VendorKey: "pay_ts", LocalField: "PaidAt", Coerce: EpochMillis},
		{VendorKey: "modified", LocalField: "ModifiedAt", Coerce: ISOLocal},
	},
}

// ==================== 校验 ====================

func TestTable_Validate(t *testing.T) {
	assert.NoError(t, testTable.Validate(&mappedOrder{}))

	bad := Table{
		Entity: "order",
		Rules:  []FieldRule{{VendorKey: "x", LocalField: "NoSuchField"}},
	}
	err := bad.Validate(&mappedOrder{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "NoSuchField")
}

// ==================== 应用映射 ====================

func TestTable_Apply_FullRecord(t *testing.T) {
	vendor := map[string]interface{}{
		"o_id":       float64(9007199254740993), // 超出 float 安全精度的大单号
		"buyer":      "Nguyen Van A",
		"amount":     125.5,
		"qty":        float64(3),
		"tags":       []interface{}{"cod", "priority"},
		"variations": []interface{}{"Color:Red", "Size:M"},
		"order_ts":   float64(1700000000),
		"pay_ts":     float64(1700000000500),
		"modified":   "2023-11-14T22:13:20.123+07:00",
		"ignored":    "dropped silently",
	}

	var out mappedOrder
	testTable.Apply(vendor, &out)

	assert.Equal(t, "Nguyen Van A", out.BuyerName)
	assert.Equal(t, int64(12550), out.TotalAmount)
	assert.Equal(t, 3, out.Quantity)
	assert.Equal(t, []string{"cod", "priority"}, out.Labels)
	assert.Equal(t, "[Color:Red, Size:M]", out.VariantNote)

	if assert.NotNil(t, out.OrderedAt) {
		assert.Equal(t, int64(1700000000), out.OrderedAt.Unix())
	}
	if assert.NotNil(t, out.PaidAt) {
		assert.Equal(t, int64(1700000000500), out.PaidAt.UnixMilli())
	}
	// 裁掉小数与偏移后按本地分量解析，不做时区换算
	if assert.NotNil(t, out.ModifiedAt) {
		assert.Equal(t, "2023-11-14T22:13:20", out.ModifiedAt.Format("2006-01-02T15:04:05"))
	}
}

// 平台用 0 表示“未设置”，不能落成 1970 年
func TestTable_Apply_ZeroEpochUnset(t *testing.T) {
	vendor := map[string]interface{}{
		"o_id":     float64(0),
		"order_ts": float64(0),
		"pay_ts":   float64(0),
	}

	var out mappedOrder
	testTable.Apply(vendor, &out)

	assert.Nil(t, out.OrderedAt)
	assert.Nil(t, out.PaidAt)
	assert.Equal(t, "", out.ExternalOrderID)
}

// 坏值置空，不中断整条记录
func TestTable_Apply_BadValueSwallowed(t *testing.T) {
	vendor := map[string]interface{}{
		"buyer":    "B",
		"modified": "not-a-date",
		"qty":      "abc",
	}

	var out mappedOrder
	testTable.Apply(vendor, &out)

	assert.Equal(t, "B", out.BuyerName)
	assert.Nil(t, out.ModifiedAt)
	assert.Equal(t, 0, out.Quantity)
}

// ==================== 单个转换函数 ====================

func TestBigID_Formats(t *testing.T) {
	got, err := BigID(float64(123456789))
	assert.NoError(t, err)
	assert.Equal(t, "123456789", got)

	got, err = BigID("")
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = BigID("0")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestISOLocal_Empty(t *testing.T) {
	got, err := ISOLocal("")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestText_NumberNoExponent(t *testing.T) {
	got, err := Text(float64(10000000000))
	assert.NoError(t, err)
	assert.Equal(t, "10000000000", got)
}
