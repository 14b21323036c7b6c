package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jibsearch/backend/internal/domain"
)

// filterPromptTemplate takes the category list as its only argument
const filterPromptTemplate = `คุณเป็นผู้เชี่ยวชาญในการวิเคราะห์ความต้องการของลูกค้าและสร้างตัวกรอง MongoDB

ข้อมูลสินค้ามี schema ดังนี้:
- brand: ยี่ห้อสินค้า (string)
- category: หมวดหมู่สินค้า (string)
- name: ชื่อสินค้า (string)
- detail: รายละเอียดสินค้า (string)
- price: ราคาเดิม (integer)
- sellprice: ราคาขาย (integer)
- discount: ส่วนลดเปอร์เซ็นต์ (integer)
- views: จำนวนการดู (integer)
- warranty: การรับประกัน (string)

หมวดหมู่ที่มี:
%s

กฎการแปลงคำ:

หมวดหมู่สินค้า:
- "โน้ตบุค", "โน้ตบุ๊ค", "notebook", "laptop" → category: "โน้ตบุ๊ค"
- "คอม", "คอมพิวเตอร์", "desktop", "pc" → category: "เดสก์ท็อป|คอมพิวเตอร์"
- "แรม", "ram", "memory" → category: "เมมโมรี่การ์ด|คอมพิวเตอร์ฮาร์ดแวร์"
- "การ์ดจอ", "vga", "gpu", "cpu", "ซีพียู" → category: "คอมพิวเตอร์ฮาร์ดแวร์"
- "เมาส์", "mouse", "คีย์บอร์ด", "keyboard" → category: "คีย์บอร์ด / เมาส์"
- "จอ", "จอมอนิเตอร์", "monitor" → category: "จอคอมพิวเตอร์"

วัตถุประสงค์การใช้งาน:
- "เล่นเกม", "gaming", "เกม", "แรง" → $or กับ name/detail: "gaming|เกม|แรง|MSI|ROG|Legion|TUF|RTX|GTX|Predator|เกมมิ่ง|144Hz|240Hz"
- "ทำงาน", "office", "ออฟฟิศ", "excel" → $or กับ name/detail: "office|ทำงาน|business|Office.*Home|Excel|Word|บางเฉียบ|เบา|พกพา"
- "คุ้มค่า", "แนะนำ", "ดีที่สุด" → views $gte 500

งบประมาณ:
- "งบ X", "ราคา X", "ไม่เกิน X", "งบประมาณ X" → sellprice $lte X
- "X-Y" → sellprice $gte X และ $lte Y

กฎสำคัญ:
- ใช้ "$options": "i" กับทุก $regex
- ใช้ $or สำหรับเงื่อนไขข้อความหลายแบบใน name/detail
- ถ้าไม่พบหมวดหมู่ชัดเจน ให้ค้นหาใน name/detail แทน

ตัวอย่าง:

"โน้ตบุค เล่นเกม งบ 20000" →
{"filter": {"category": {"$regex": "โน้ตบุ๊ค", "$options": "i"}, "sellprice": {"$lte": 20000}, "$or": [{"name": {"$regex": "gaming|เกม|MSI|ROG|Legion|TUF|RTX|GTX", "$options": "i"}}, {"detail": {"$regex": "gaming|เกม|RTX|GTX|GeForce|Radeon.*RX|144Hz", "$options": "i"}}]}, "explanation": "โน้ตบุ๊คสำหรับเล่นเกม ราคาไม่เกิน 20,000 บาท"}

"จอคอมพิวเตอร์ จอใหญ่ จอสวย" →
{"filter": {"category": {"$regex": "จอคอมพิวเตอร์", "$options": "i"}, "$or": [{"name": {"$regex": "27.*นิ้ว|32.*นิ้ว|4K|QHD", "$options": "i"}}, {"detail": {"$regex": "4K|QHD|IPS|OLED|HDR", "$options": "i"}}]}, "explanation": "จอขนาดใหญ่ ความละเอียดสูง"}

ตอบเป็น JSON object เท่านั้น:
{"filter": { mongodb_filter_object }, "explanation": "คำอธิบายสั้นๆ ว่าทำไมใช้เงื่อนไขนี้"}`

const rankPrompt = `คุณเป็นผู้เชี่ยวชาญด้านเทคโนโลยีและคอมพิวเตอร์ที่มีความรู้เกี่ยวกับสินค้า IT ทั้งหมด

วิเคราะห์สินค้าที่ได้รับและจัดอันดับตามความเหมาะสมกับความต้องการของลูกค้า:

หลักเกณฑ์การแนะนำ:
1. ความตรงกับความต้องการ (50%)
2. ความคุ้มค่าของราคา (25%)
3. คุณภาพและความน่าเชื่อถือ (15%)
4. ความนิยม (10%)

ส่งคืนเป็น JSON เท่านั้น:
{
  "recommendations": [
    {
      "product_id": "id ของสินค้า",
      "rank": 1,
      "score": 95,
      "reasons": ["เหตุผลที่แนะนำ"],
      "pros": ["ข้อดี"],
      "cons": ["ข้อเสีย"] หรือ null ถ้าไม่มี
    }
  ],
  "explanation": "สรุปคำแนะนำโดยรวม",
  "total_analyzed": จำนวนสินค้าที่วิเคราะห์
}

จัดอันดับให้ได้สูงสุด 5 อันดับแรก เรียงจากมากไปน้อย ใช้ product_id จากรายการที่ได้รับเท่านั้น`

const analysisPrompt = `Analyze this Thai computer shop search query and extract search criteria.

AVAILABLE CATEGORIES (use exactly):
- CPU (ซีพียู, processor)
- NOTEBOOK (โน้ตบุ๊ค, notebook, laptop)
- COMPUTERSET (คอมเซ็ต, ชุดคอม)
- COMPUTER (คอม, desktop, คอมพิวเตอร์)
- Apple (แอปเปิล, mac, iphone, ipad)

RULES:
- งบ X / ราคา X / ไม่เกิน X → price_max: X
- ราคา X-Y → price_min: X, price_max: Y
- Brands: AMD, Intel, ASUS, HP, DELL, LENOVO, MSI, ACER, Apple, Samsung
- แรงๆ/gaming/เกม/RTX/GTX → performance_level: "gaming"
- ทำงาน/office/ออฟฟิศ → performance_level: "office"
- แนะนำ/recommend → performance_level: "recommended"

EXAMPLES:
- "CPU แนะนำราคาไม่เกิน 20000" → {"category": "CPU", "price_max": 20000, "performance_level": "recommended"}
- "Intel CPU ราคา 5000-10000" → {"category": "CPU", "brands": ["Intel"], "price_min": 5000, "price_max": 10000}

Return ONLY valid JSON:
{"category": string or null, "price_min": number or null, "price_max": number or null, "keywords": [string], "brands": [string], "performance_level": "gaming" | "office" | "recommended" | null}`

const (
	userQueryPrefix = "ลูกค้าต้องการ: "
	detailRuneLimit = 200
)

var filterPrompt = buildFilterPrompt()

func buildFilterPrompt() string {
	categories, err := marshalPromptJSON(domain.Categories)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf(filterPromptTemplate, categories)
}

// marshalPromptJSON indents v and leaves &, < and > unescaped
func marshalPromptJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// productSummary is the condensed record shown to the ranking model
type productSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Brand     string `json:"brand"`
	Category  string `json:"category"`
	Price     int    `json:"price"`
	SellPrice int    `json:"sellprice"`
	Discount  int    `json:"discount"`
	Detail    string `json:"detail"`
	Views     int    `json:"views"`
}

func summarize(p domain.RawProduct) productSummary {
	return productSummary{
		ID:        p.ID(),
		Name:      p.String("name"),
		Brand:     p.String("brand"),
		Category:  p.String("category"),
		Price:     p.Int("price"),
		SellPrice: p.Int("sellprice"),
		Discount:  p.Int("discount"),
		Detail:    truncateRunes(p.String("detail"), detailRuneLimit),
		Views:     p.Int("views"),
	}
}

func buildRankUserMessage(query string, products []domain.RawProduct) (string, error) {
	summaries := make([]productSummary, 0, len(products))
	for _, p := range products {
		summaries = append(summaries, summarize(p))
	}
	body, err := marshalPromptJSON(summaries)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("ความต้องการ: ")
	b.WriteString(query)
	b.WriteString("\n\nสินค้าที่จะวิเคราะห์:\n")
	b.WriteString(body)
	return b.String(), nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
