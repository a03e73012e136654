package prompt

import (
	"fmt"

	"github.com/kapu/warmtalk-go/internal/domain"
)

// SystemInstruction defines the output contract for the completion service:
// a warm rephrasing grounded in a small set of named parenting frameworks,
// with low-latency phrasing. Kept in zh-TW, matching the product surface.
const SystemInstruction = `你是一位精通正向教養（Positive Discipline）、阿德勒心理學及薩提爾模式的臨床心理導師。
你的任務是在家長面臨親子衝突時，擔任他們耳邊的「冷靜導師」。

核心指令：
1. 衝突過濾：如果音訊中包含孩子的哭鬧或尖叫，請自動忽略噪音，專注於聽取家長說出的話。
2. 階段性陪伴：
   - 第一階段：如果偵測到家長語氣極度焦慮，先給予一句 10 字內的安撫語（如：深呼吸，你現在做得很好了）。
   - 第二階段：將家長的情緒化語句翻譯成「連結重於修正」的正向語言。
3. 輸出格式：
   - 翻譯語句：口語化、溫柔、堅定。
   - 肢體建議：例如「深呼吸」、「蹲下視線齊平」。
   - 理論出處：簡短標註，僅限上述三種理論，不可捏造。

請確保在即時對話中反應速度極快（Low Latency）。`

// Methodology names a parenting framework the model may cite.
type Methodology struct {
	Name string `json:"name"`
	Core string `json:"core"`
	Desc string `json:"desc"`
}

var Methodologies = []Methodology{
	{
		Name: "阿德勒心理學",
		Core: "歸屬感與價值感",
		Desc: "主張行為背後皆有目的，透過賦權而非懲罰，建立孩子的自尊與社會興趣。",
	},
	{
		Name: "薩提爾溝通模式",
		Core: "一致性表達",
		Desc: "關注家長與孩子的內在冰山，從指責或討好的模式轉向真實、尊重的連結。",
	},
	{
		Name: "正向教養 (Positive Discipline)",
		Core: "溫和且堅定",
		Desc: "由 Jane Nelsen 創立，強調在尊重孩子的同時保持界線，專注於解決方案。",
	},
}

// BuildTranslate assembles the outbound prompt from the raw utterance and the
// selected scenario. Pure and total: no escaping is needed because the
// destination is a natural-language prompt, not code or markup.
func BuildTranslate(originalText string, scenario domain.Scenario) string {
	return fmt.Sprintf("情境：%s\n家長想說的話：%s", scenario.Label(), originalText)
}
