package domain

// DefaultTaxonomyEntries are the ten strategic industries tracked by default.
func DefaultTaxonomyEntries() []TaxonomyEntry {
	return []TaxonomyEntry{
		{Label: "人工智能", Glyph: "🤖", Keywords: []string{"人工智能", "AI大模型", "深度学习", "机器学习", "AIGC", "生成式AI", "智能算力", "大语言模型"}},
		{Label: "半导体与芯片", Glyph: "💾", Keywords: []string{"半导体", "芯片", "集成电路", "光刻机", "EDA", "先进封装", "晶圆", "国产芯片"}},
		{Label: "新能源", Glyph: "⚡", Keywords: []string{"新能源", "光伏", "风电", "储能", "氢能", "新能源汽车", "动力电池", "充电桩"}},
		{Label: "生物医药", Glyph: "💊", Keywords: []string{"生物医药", "创新药", "基因治疗", "细胞治疗", "mRNA", "医疗器械", "精准医疗"}},
		{Label: "数字经济", Glyph: "📊", Keywords: []string{"数字经济", "数字化转型", "工业互联网", "数据要素", "智慧城市", "数字基建", "数字产业"}},
		{Label: "高端装备制造", Glyph: "🏭", Keywords: []string{"智能制造", "工业机器人", "高端装备", "数控机床", "3D打印", "机器人产业", "柔性制造"}},
		{Label: "航空航天", Glyph: "🚀", Keywords: []string{"航空航天", "商业航天", "卫星互联网", "低空经济", "无人机", "大飞机", "航空发动机"}},
		{Label: "新材料", Glyph: "🧪", Keywords: []string{"新材料", "碳纤维", "石墨烯", "稀土", "先进陶瓷", "超导材料", "纳米材料", "新材料产业"}},
		{Label: "绿色低碳", Glyph: "🌿", Keywords: []string{"绿色低碳", "碳中和", "碳达峰", "碳交易", "碳排放", "ESG", "清洁能源", "节能减排"}},
		{Label: "量子科技", Glyph: "⚛️", Keywords: []string{"量子计算", "量子通信", "量子科技", "量子芯片", "量子计算机", "量子技术"}},
	}
}

// DefaultExtendedEntries is the broader secondary table, mainly hit by funding titles.
func DefaultExtendedEntries() []TaxonomyEntry {
	return []TaxonomyEntry{
		{Label: "人工智能", Keywords: []string{"AI", "大模型", "机器人", "智能体", "算力", "算法", "GPT", "LLM"}},
		{Label: "半导体与芯片", Keywords: []string{"芯片", "半导体", "晶圆", "EDA", "光刻"}},
		{Label: "新能源", Keywords: []string{"电池", "光伏", "风电", "储能", "充电", "新能源车"}},
		{Label: "生物医药", Keywords: []string{"医药", "医疗", "生物", "基因", "药物", "诊断", "疫苗"}},
		{Label: "航空航天", Keywords: []string{"航天", "火箭", "卫星", "无人机", "低空"}},
		{Label: "高端装备制造", Keywords: []string{"机器人", "制造", "自动化", "数控"}},
		{Label: "量子科技", Keywords: []string{"量子"}},
		{Label: "新材料", Keywords: []string{"材料", "碳纤维", "石墨烯", "稀土"}},
		{Label: "数字经济", Keywords: []string{"数字化", "数据", "云计算", "SaaS"}},
		{Label: "绿色低碳", Keywords: []string{"碳中和", "环保", "清洁", "ESG"}},
	}
}

// DefaultTaxonomy builds the default primary and extended tables.
func DefaultTaxonomy() Taxonomy {
	return MustTaxonomy(DefaultTaxonomyEntries(), DefaultExtendedEntries())
}
