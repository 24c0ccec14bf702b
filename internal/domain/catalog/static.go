package catalog

// DefaultMedicines is the catalog bundled with the binary.
func DefaultMedicines() []Medicine {
	out := make([]Medicine, len(defaultMedicines))
	copy(out, defaultMedicines)
	return out
}

var defaultMedicines = []Medicine{
	{ID: "1", Name: "Paracetamol", Type: TypeTablet, Category: "Analgesic", Strength: "500mg"},
	{ID: "2", Name: "Dolo 650", Type: TypeTablet, Category: "Analgesic", Strength: "650mg"},
	{ID: "3", Name: "Ibuprofen", Type: TypeTablet, Category: "NSAID", Strength: "400mg"},
	{ID: "4", Name: "Diclofenac", Type: TypeTablet, Category: "NSAID", Strength: "50mg"},
	{ID: "5", Name: "Aspirin", Type: TypeTablet, Category: "Antiplatelet", Strength: "75mg"},
	{ID: "6", Name: "Amoxicillin", Type: TypeCapsule, Category: "Antibiotic", Strength: "500mg"},
	{ID: "7", Name: "Amoxicillin + Clavulanic Acid", Type: TypeTablet, Category: "Antibiotic", Strength: "625mg"},
	{ID: "8", Name: "Azithromycin", Type: TypeTablet, Category: "Antibiotic", Strength: "500mg"},
	{ID: "9", Name: "Ciprofloxacin", Type: TypeTablet, Category: "Antibiotic", Strength: "500mg"},
	{ID: "10", Name: "Doxycycline", Type: TypeCapsule, Category: "Antibiotic", Strength: "100mg"},
	{ID: "11", Name: "Metronidazole", Type: TypeTablet, Category: "Antibiotic", Strength: "400mg"},
	{ID: "12", Name: "Cefixime", Type: TypeTablet, Category: "Antibiotic", Strength: "200mg"},
	{ID: "13", Name: "Cetirizine", Type: TypeTablet, Category: "Antihistamine", Strength: "10mg"},
	{ID: "14", Name: "Levocetirizine", Type: TypeTablet, Category: "Antihistamine", Strength: "5mg"},
	{ID: "15", Name: "Montelukast", Type: TypeTablet, Category: "Antiasthmatic", Strength: "10mg"},
	{ID: "16", Name: "Salbutamol", Type: TypeInhaler, Category: "Bronchodilator", Strength: "100mcg"},
	{ID: "17", Name: "Pantoprazole", Type: TypeTablet, Category: "Antacid", Strength: "40mg"},
	{ID: "18", Name: "Omeprazole", Type: TypeCapsule, Category: "Antacid", Strength: "20mg"},
	{ID: "19", Name: "Ranitidine", Type: TypeTablet, Category: "Antacid", Strength: "150mg"},
	{ID: "20", Name: "Ondansetron", Type: TypeTablet, Category: "Antiemetic", Strength: "4mg"},
	{ID: "21", Name: "Domperidone", Type: TypeTablet, Category: "Antiemetic", Strength: "10mg"},
	{ID: "22", Name: "Metformin", Type: TypeTablet, Category: "Antidiabetic", Strength: "500mg"},
	{ID: "23", Name: "Glimepiride", Type: TypeTablet, Category: "Antidiabetic", Strength: "1mg"},
	{ID: "24", Name: "Insulin Glargine", Type: TypeInjection, Category: "Antidiabetic", Strength: "100IU/ml"},
	{ID: "25", Name: "Amlodipine", Type: TypeTablet, Category: "Antihypertensive", Strength: "5mg"},
	{ID: "26", Name: "Telmisartan", Type: TypeTablet, Category: "Antihypertensive", Strength: "40mg"},
	{ID: "27", Name: "Losartan", Type: TypeTablet, Category: "Antihypertensive", Strength: "50mg"},
	{ID: "28", Name: "Atenolol", Type: TypeTablet, Category: "Beta Blocker", Strength: "50mg"},
	{ID: "29", Name: "Atorvastatin", Type: TypeTablet, Category: "Statin", Strength: "10mg"},
	{ID: "30", Name: "Rosuvastatin", Type: TypeTablet, Category: "Statin", Strength: "10mg"},
	{ID: "31", Name: "Clopidogrel", Type: TypeTablet, Category: "Antiplatelet", Strength: "75mg"},
	{ID: "32", Name: "Levothyroxine", Type: TypeTablet, Category: "Thyroid", Strength: "50mcg"},
	{ID: "33", Name: "Prednisolone", Type: TypeTablet, Category: "Corticosteroid", Strength: "10mg"},
	{ID: "34", Name: "Vitamin D3", Type: TypeCapsule, Category: "Supplement", Strength: "60000IU"},
	{ID: "35", Name: "Vitamin B Complex", Type: TypeCapsule, Category: "Supplement"},
	{ID: "36", Name: "Calcium Carbonate", Type: TypeTablet, Category: "Supplement", Strength: "500mg"},
	{ID: "37", Name: "Ferrous Sulfate", Type: TypeTablet, Category: "Supplement", Strength: "200mg"},
	{ID: "38", Name: "Cough Syrup (Dextromethorphan)", Type: TypeSyrup, Category: "Antitussive", Strength: "10mg/5ml"},
	{ID: "39", Name: "Ambroxol", Type: TypeSyrup, Category: "Mucolytic", Strength: "15mg/5ml"},
	{ID: "40", Name: "ORS", Type: TypeSyrup, Category: "Electrolyte"},
	{ID: "41", Name: "Loperamide", Type: TypeCapsule, Category: "Antidiarrheal", Strength: "2mg"},
	{ID: "42", Name: "Mupirocin", Type: TypeOintment, Category: "Antibiotic", Strength: "2%"},
	{ID: "43", Name: "Clotrimazole", Type: TypeOintment, Category: "Antifungal", Strength: "1%"},
	{ID: "44", Name: "Ciprofloxacin Eye Drops", Type: TypeDrops, Category: "Antibiotic", Strength: "0.3%"},
	{ID: "45", Name: "Diazepam", Type: TypeTablet, Category: "Anxiolytic", Strength: "5mg"},
	{ID: "46", Name: "Tramadol", Type: TypeTablet, Category: "Opioid Analgesic", Strength: "50mg"},
}
