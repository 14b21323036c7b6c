package domain

import "regexp"

// Categories is the fixed catalog category enumeration
var Categories = []string{
	"APPLE PRODUCTS", "กล้อง / กล้องวงจรปิด", "คอนเทนต์ ครีเอเตอร์", "คอมพิวเตอร์ฮาร์ดแวร์",
	"คอมพิวเตอร์เซ็ต", "คีย์บอร์ด / เมาส์ / เมาส์ปากกา", "จอคอมพิวเตอร์", "ชุดระบายความร้อน",
	"ทีวี", "ระบบขายหน้าร้าน", "ลำโพง / หูฟัง", "สมาร์ทโฟน และแท็บเล็ต", "สินค้าสำหรับองค์กร",
	"อุปกรณ์ขุดเหรียญคริปโต", "อุปกรณ์ตกแต่งเคส", "อุปกรณ์สำนักงาน", "อุปกรณ์เกมมิ่งเกียร์",
	"อุปกรณ์เน็ตเวิร์ค", "อุปกรณ์เสริม", "เครื่องพิมพ์ หมึก ดรัม และสแกนเนอร์", "เครื่องสำรองไฟ",
	"เครื่องใช้ไฟฟ้าภายในบ้าน", "เซิร์ฟเวอร์", "เดสก์ท็อป / ออลอินวัน / มินิพีซี",
	"เมมโมรี่การ์ด / ฮาร์ดดิสก์", "เว็บแคม / อุปกรณ์สำหรับการประชุม", "โดรน", "โน้ตบุ๊ค",
	"โปรเจคเตอร์", "โปรแกรมคอมพิวเตอร์", "ไลฟ์สไตล์ & แก็ดเจ็ต",
}

// Analysis category labels produced by query analysis
const (
	CategoryCPU         = "CPU"
	CategoryNotebook    = "NOTEBOOK"
	CategoryComputerSet = "COMPUTERSET"
	CategoryComputer    = "COMPUTER"
	CategoryApple       = "Apple"
)

// categoryPatterns maps analysis labels to a regex over catalog category names
var categoryPatterns = map[string]string{
	CategoryCPU:         "คอมพิวเตอร์ฮาร์ดแวร์",
	CategoryNotebook:    "โน้ตบุ๊ค",
	CategoryComputerSet: "คอมพิวเตอร์เซ็ต",
	CategoryComputer:    "เดสก์ท็อป|คอมพิวเตอร์",
	CategoryApple:       "APPLE",
}

// CategoryPattern returns the catalog category regex for an analysis label.
// Unknown labels match literally so model-produced labels still filter.
func CategoryPattern(label string) string {
	if p, ok := categoryPatterns[label]; ok {
		return p
	}
	return regexp.QuoteMeta(label)
}
